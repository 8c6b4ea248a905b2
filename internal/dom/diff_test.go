package dom

import "testing"

func TestDiff_AddedAndRemoved(t *testing.T) {
	t.Parallel()
	pre := NewSnapshot("https://example.com/a", "A", "complete", 0, 0, 0, 0, Viewport{}, []Element{
		elAt(0, "button", map[string]string{"id": "cancel"}),
	}, nil)
	post := NewSnapshot("https://example.com/a", "A", "complete", 0, 0, 0, 0, Viewport{}, []Element{
		elAt(0, "button", map[string]string{"id": "submit"}),
	}, nil)

	d := Diff(pre, post, DiffIncremental)
	if len(d.DOMChanges.Added) != 1 || d.DOMChanges.Added[0].Selector != "#submit" {
		t.Fatalf("expected one added element #submit, got %+v", d.DOMChanges.Added)
	}
	if len(d.DOMChanges.Removed) != 1 || d.DOMChanges.Removed[0].Selector != "#cancel" {
		t.Fatalf("expected one removed element #cancel, got %+v", d.DOMChanges.Removed)
	}
	if d.NavigationChanges.URLChanged {
		t.Fatal("expected no URL change")
	}
}

func TestDiff_Moved(t *testing.T) {
	t.Parallel()
	el := elAt(0, "input", map[string]string{"name": "email"})
	pre := NewSnapshot("https://example.com", "", "complete", 0, 0, 0, 0, Viewport{}, []Element{el}, nil)
	moved := el
	moved.Index = 3
	post := NewSnapshot("https://example.com", "", "complete", 0, 0, 0, 0, Viewport{}, []Element{
		elAt(0, "div", nil), elAt(1, "div", nil), elAt(2, "div", nil), moved,
	}, nil)

	d := Diff(pre, post, DiffIncremental)
	if len(d.DOMChanges.Moved) != 1 {
		t.Fatalf("expected one moved element, got %+v", d.DOMChanges.Moved)
	}
	if d.DOMChanges.Moved[0].FromIndex != 0 || d.DOMChanges.Moved[0].ToIndex != 3 {
		t.Fatalf("unexpected move record: %+v", d.DOMChanges.Moved[0])
	}
}

func TestDiff_NavigationChanged(t *testing.T) {
	t.Parallel()
	pre := NewSnapshot("https://example.com/a", "Page A", "complete", 0, 0, 0, 0, Viewport{}, nil, nil)
	post := NewSnapshot("https://example.com/b", "Page B", "complete", 0, 0, 0, 0, Viewport{}, nil, nil)

	d := Diff(pre, post, DiffIncremental)
	if !d.NavigationChanges.URLChanged || !d.NavigationChanges.TitleChanged {
		t.Fatalf("expected url and title changed, got %+v", d.NavigationChanges)
	}
	found := false
	for _, ev := range d.SemanticEvents {
		if ev.EventName == "page_load_complete" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected page_load_complete event, got %+v", d.SemanticEvents)
	}
}

func TestDiff_Deterministic(t *testing.T) {
	t.Parallel()
	pre := NewSnapshot("https://example.com", "A", "complete", 0, 0, 0, 0, Viewport{}, []Element{
		elAt(0, "button", map[string]string{"id": "a"}),
		elAt(1, "button", map[string]string{"id": "b"}),
	}, nil)
	post := NewSnapshot("https://example.com", "A", "complete", 0, 0, 0, 0, Viewport{}, []Element{
		elAt(0, "button", map[string]string{"id": "a"}),
		elAt(1, "button", map[string]string{"id": "c"}),
	}, nil)

	d1 := Diff(pre, post, DiffIncremental)
	d2 := Diff(pre, post, DiffIncremental)
	if len(d1.DOMChanges.Added) != len(d2.DOMChanges.Added) || len(d1.SemanticEvents) != len(d2.SemanticEvents) {
		t.Fatal("expected deterministic diff output across repeated calls")
	}
}
