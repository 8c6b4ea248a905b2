package graph

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/store"
)

type fakeDocStore struct {
	docs map[string]map[string][]byte // collection -> id -> doc
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: map[string]map[string][]byte{}}
}

func (f *fakeDocStore) put(collection string, id string, v any) {
	doc, _ := json.Marshal(v)
	if f.docs[collection] == nil {
		f.docs[collection] = map[string][]byte{}
	}
	f.docs[collection][id] = doc
}

func (f *fakeDocStore) Upsert(ctx context.Context, collection, id string, doc []byte) error {
	if f.docs[collection] == nil {
		f.docs[collection] = map[string][]byte{}
	}
	f.docs[collection][id] = doc
	return nil
}

func (f *fakeDocStore) Get(ctx context.Context, collection, id string) ([]byte, bool, error) {
	doc, ok := f.docs[collection][id]
	return doc, ok, nil
}

func (f *fakeDocStore) ListByKnowledgeID(ctx context.Context, collection, knowledgeID string) ([][]byte, error) {
	var out [][]byte
	for _, doc := range f.docs[collection] {
		out = append(out, doc)
	}
	return out, nil
}

func (f *fakeDocStore) DeleteByKnowledgeID(ctx context.Context, collection, knowledgeID string) (int, error) {
	n := len(f.docs[collection])
	delete(f.docs, collection)
	return n, nil
}

func TestBuild_ShortestPath(t *testing.T) {
	docs := newFakeDocStore()
	docs.put(store.CollectionScreens, "s1", model.Screen{ScreenID: "s1", Name: "Dashboard"})
	docs.put(store.CollectionScreens, "s2", model.Screen{ScreenID: "s2", Name: "Settings"})
	docs.put(store.CollectionScreens, "s3", model.Screen{ScreenID: "s3", Name: "Profile"})
	docs.put(store.CollectionTransitions, "t1", model.Transition{TransitionID: "t1", FromScreenID: "s1", ToScreenID: "s2"})
	docs.put(store.CollectionTransitions, "t2", model.Transition{TransitionID: "t2", FromScreenID: "s2", ToScreenID: "s3"})

	idx, err := Build(context.Background(), docs, "kw1")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	path, ok := idx.ShortestPath("s1", "s3")
	if !ok {
		t.Fatal("expected a path from s1 to s3")
	}
	if len(path) != 2 || path[0] != "t1" || path[1] != "t2" {
		t.Fatalf("unexpected path: %+v", path)
	}

	if _, ok := idx.ShortestPath("s3", "s1"); ok {
		t.Fatal("expected no reverse path given one-directional transitions")
	}
}

func TestBuild_RecoveryRoute(t *testing.T) {
	docs := newFakeDocStore()
	docs.put(store.CollectionScreens, "s1", model.Screen{ScreenID: "s1", Name: "Checkout"})
	docs.put(store.CollectionScreenGroups, "g1", model.ScreenGroup{
		GroupID: "g1", Name: "general", ScreenIDs: []string{"s1"},
		RecoveryEdges: []model.RecoveryEdge{{ScreenID: "dash", Priority: 1, Reliability: 1.0}},
	})

	idx, err := Build(context.Background(), docs, "kw1")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	edges := idx.RecoveryRoute("s1")
	if len(edges) != 1 || edges[0].ScreenID != "dash" {
		t.Fatalf("unexpected recovery edges: %+v", edges)
	}
}
