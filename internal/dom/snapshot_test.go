package dom

import "testing"

func elAt(index int, tag string, attrs map[string]string) Element {
	return Element{Index: index, Tag: tag, Attributes: attrs, Visible: true, Enabled: true}
}

func TestNewSnapshot_IndicesContiguous(t *testing.T) {
	t.Parallel()
	els := []Element{
		elAt(1, "button", nil),
		elAt(0, "input", map[string]string{"name": "email"}),
	}
	snap := NewSnapshot("https://example.com", "Example", "complete", 0, 0, 0, 0, Viewport{Width: 1280, Height: 720}, els, nil)
	if !snap.IndicesContiguous() {
		t.Fatalf("expected contiguous indices, got %+v", snap.Elements)
	}
	if snap.Elements[0].Tag != "input" {
		t.Fatalf("expected sort by index, got element 0 = %+v", snap.Elements[0])
	}
}

func TestComputeContentHash_StableAcrossBBoxOnly(t *testing.T) {
	t.Parallel()
	a := elAt(0, "button", map[string]string{"id": "submit"})
	a.BBox = BBox{X: 10, Y: 10, Width: 50, Height: 20}
	b := a
	b.BBox = BBox{X: 99, Y: 99, Width: 50, Height: 20}

	h1 := ComputeContentHash("https://example.com", []Element{a})
	h2 := ComputeContentHash("https://example.com", []Element{b})
	if h1 != h2 {
		t.Fatalf("expected bbox-only change to not affect content_hash, got %s vs %s", h1, h2)
	}
}

func TestComputeContentHash_ChangesOnElementSetChange(t *testing.T) {
	t.Parallel()
	a := elAt(0, "button", map[string]string{"id": "submit"})
	h1 := ComputeContentHash("https://example.com", []Element{a})
	h2 := ComputeContentHash("https://example.com", []Element{a, elAt(1, "input", nil)})
	if h1 == h2 {
		t.Fatal("expected added element to change content_hash")
	}
}

func TestElementAt(t *testing.T) {
	t.Parallel()
	snap := NewSnapshot("https://example.com", "", "complete", 0, 0, 0, 0, Viewport{}, []Element{
		elAt(0, "a", nil), elAt(1, "button", nil),
	}, nil)

	e, ok := snap.ElementAt(1)
	if !ok || e.Tag != "button" {
		t.Fatalf("ElementAt(1) = %+v, %v", e, ok)
	}
	if _, ok := snap.ElementAt(5); ok {
		t.Fatal("expected out-of-range index to resolve false")
	}
}
