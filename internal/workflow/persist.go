package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
)

// docEntry is one entity marshaled for upsert, paired with its primary key.
type docEntry struct {
	id  string
	doc []byte
}

// toDocs marshals each entity in items to JSON, pairing it with the id
// keyFn extracts from it.
func toDocs[T any](items []T, keyFn func(T) string) []docEntry {
	entries := make([]docEntry, 0, len(items))
	for _, item := range items {
		doc, err := json.Marshal(item)
		if err != nil {
			continue // unmarshalable entity is a programmer error, not data to propagate mid-phase
		}
		entries = append(entries, docEntry{id: keyFn(item), doc: doc})
	}
	return entries
}

func (o *Orchestrator) persistEntities(ctx context.Context, collection string, entries []docEntry) error {
	for _, e := range entries {
		if err := o.docs.Upsert(ctx, collection, e.id, e.doc); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", collection, e.id, err)
		}
	}
	return nil
}

func screenKey(s model.Screen) string         { return s.ScreenID }
func taskKey(t model.Task) string             { return t.TaskID }
func actionKey(a model.Action) string         { return a.ActionID }
func transitionKey(t model.Transition) string { return t.TransitionID }
func groupKey(g model.ScreenGroup) string     { return g.GroupID }
func funcKey(f model.BusinessFunction) string { return f.FunctionID }
func flowKey(f model.UserFlow) string         { return f.FlowID }
func workflowKey(w model.Workflow) string     { return w.WorkflowID }
func chunkKey(c model.ContentChunk) string    { return c.ChunkID }
