// Package graph builds the in-memory navigation graph index of spec.md
// §4.10: an on-demand cache over the document store, never itself a source
// of truth. It answers shortest-path and recovery-priority queries and
// computes the supplemental BusinessFeature rollup of SPEC_FULL.md §6.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/store"
)

// Edge is one navigation-adjacency entry: a transition leading to a target
// screen.
type Edge struct {
	Transition model.Transition
	ToScreenID string
}

// Index is the rebuilt-not-persisted navigation graph for one knowledge_id.
type Index struct {
	KnowledgeID string
	Screens     map[string]model.Screen
	Groups      map[string]model.ScreenGroup
	adjacency   map[string][]Edge
	groupOf     map[string]string // screen_id -> group_id
}

// Build constructs an Index from the document store for knowledgeID
// (§4.10: "built from the store on demand").
func Build(ctx context.Context, docs capability.DocStore, knowledgeID string) (*Index, error) {
	screens, err := loadScreens(ctx, docs, knowledgeID)
	if err != nil {
		return nil, err
	}
	transitions, err := loadTransitions(ctx, docs, knowledgeID)
	if err != nil {
		return nil, err
	}
	groups, err := loadGroups(ctx, docs, knowledgeID)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		KnowledgeID: knowledgeID,
		Screens:     screens,
		Groups:      groups,
		adjacency:   map[string][]Edge{},
		groupOf:     map[string]string{},
	}
	for _, t := range transitions {
		idx.adjacency[t.FromScreenID] = append(idx.adjacency[t.FromScreenID], Edge{Transition: t, ToScreenID: t.ToScreenID})
	}
	for _, g := range groups {
		for _, sid := range g.ScreenIDs {
			idx.groupOf[sid] = g.GroupID
		}
	}
	return idx, nil
}

func loadScreens(ctx context.Context, docs capability.DocStore, knowledgeID string) (map[string]model.Screen, error) {
	raw, err := docs.ListByKnowledgeID(ctx, store.CollectionScreens, knowledgeID)
	if err != nil {
		return nil, fmt.Errorf("load screens: %w", err)
	}
	out := make(map[string]model.Screen, len(raw))
	for _, r := range raw {
		var s model.Screen
		if err := decodeOrSkip(r, &s); err != nil {
			continue
		}
		out[s.ScreenID] = s
	}
	return out, nil
}

func loadTransitions(ctx context.Context, docs capability.DocStore, knowledgeID string) ([]model.Transition, error) {
	raw, err := docs.ListByKnowledgeID(ctx, store.CollectionTransitions, knowledgeID)
	if err != nil {
		return nil, fmt.Errorf("load transitions: %w", err)
	}
	var out []model.Transition
	for _, r := range raw {
		var t model.Transition
		if err := decodeOrSkip(r, &t); err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func loadGroups(ctx context.Context, docs capability.DocStore, knowledgeID string) (map[string]model.ScreenGroup, error) {
	raw, err := docs.ListByKnowledgeID(ctx, store.CollectionScreenGroups, knowledgeID)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	out := make(map[string]model.ScreenGroup, len(raw))
	for _, r := range raw {
		var g model.ScreenGroup
		if err := decodeOrSkip(r, &g); err != nil {
			continue
		}
		out[g.GroupID] = g
	}
	return out, nil
}

// ShortestPath runs BFS over the navigation adjacency from fromScreenID to
// toScreenID (§4.10: "Shortest-path via BFS"). Returns the ordered list of
// transition ids traversed, or ok=false if unreachable.
func (idx *Index) ShortestPath(fromScreenID, toScreenID string) (path []string, ok bool) {
	if fromScreenID == toScreenID {
		return nil, true
	}
	type frame struct {
		screenID string
		path     []string
	}
	visited := map[string]bool{fromScreenID: true}
	queue := []frame{{screenID: fromScreenID}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, edge := range idx.adjacency[cur.screenID] {
			if visited[edge.ToScreenID] {
				continue
			}
			nextPath := append(append([]string{}, cur.path...), edge.Transition.TransitionID)
			if edge.ToScreenID == toScreenID {
				return nextPath, true
			}
			visited[edge.ToScreenID] = true
			queue = append(queue, frame{screenID: edge.ToScreenID, path: nextPath})
		}
	}
	return nil, false
}

// Neighbors returns the outbound navigation edges from screenID, used by
// query_knowledge's "links" query type (§6.1).
func (idx *Index) Neighbors(screenID string) []Edge {
	return append([]Edge{}, idx.adjacency[screenID]...)
}

// RecoveryRoute returns the priority-sorted recovery edges for the group
// screenID belongs to, lowest priority value first (§3.3 "lower priority =
// safer").
func (idx *Index) RecoveryRoute(screenID string) []model.RecoveryEdge {
	groupID, ok := idx.groupOf[screenID]
	if !ok {
		return nil
	}
	group := idx.Groups[groupID]
	edges := append([]model.RecoveryEdge{}, group.RecoveryEdges...)
	sort.Slice(edges, func(i, j int) bool { return edges[i].Priority < edges[j].Priority })
	return edges
}

func decodeOrSkip(raw []byte, out any) error {
	return json.Unmarshal(raw, out)
}
