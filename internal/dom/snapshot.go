// Package dom models the DOM State Model (spec.md §4.4): an immutable,
// index-addressed view of a page at a point in time, plus the element
// resolution and form-detection helpers the Action Dispatcher depends on.
//
// The shape of Snapshot/Element mirrors the teacher's
// internal/types/snapshot.go NamedSnapshot family, generalized from a
// devtools console/network capture into a DOM element capture.
package dom

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Viewport describes the browser viewport at capture time.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	FPS    int `json:"fps,omitempty"`
}

// Point is a 2D viewport coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BBox is an element's bounding box in viewport coordinates.
type BBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Element is one interactive element captured in a Snapshot. Index is dense
// and zero-based within the snapshot it belongs to (invariant: contiguous
// [0..N) per snapshot — never stable across snapshots).
type Element struct {
	Index      int               `json:"index"`
	Tag        string            `json:"tag"`
	Role       string            `json:"role,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Text       string            `json:"text,omitempty"`
	BBox       BBox              `json:"bbox"`
	Visible    bool              `json:"visible"`
	Enabled    bool              `json:"enabled"`
}

// Attr is a convenience accessor over Attributes that never panics on a nil
// map.
func (e Element) Attr(name string) string {
	if e.Attributes == nil {
		return ""
	}
	return e.Attributes[name]
}

// Signature is the portion of an element's identity used to match it across
// two different snapshots (index-stale remap, §4.2 step 3). It excludes
// index and bbox deliberately: those are capture-order and layout artifacts,
// not identity.
type Signature struct {
	Tag           string
	Role          string
	Type          string
	Name          string
	ID            string
	Placeholder   string
	NormalizedText string
}

// SignatureOf derives an element's cross-snapshot identity signature.
func SignatureOf(e Element) Signature {
	return Signature{
		Tag:            strings.ToLower(e.Tag),
		Role:           strings.ToLower(e.Role),
		Type:           strings.ToLower(e.Attr("type")),
		Name:           e.Attr("name"),
		ID:             e.Attr("id"),
		Placeholder:    e.Attr("placeholder"),
		NormalizedText: normalizeText(e.Text),
	}
}

func normalizeText(s string) string {
	fields := strings.Fields(s)
	return strings.ToLower(strings.Join(fields, " "))
}

// FormField is one field within a detected FormGroup.
type FormField struct {
	Index           int    `json:"index"`
	SemanticRole    string `json:"semantic_role,omitempty"` // username, password, email, submit, ...
	Required        bool   `json:"required"`
	ValidationState string `json:"validation_state,omitempty"`
}

// FormGroup is a detected <form> and its fields.
type FormGroup struct {
	Index  int         `json:"index"`
	Fields []FormField `json:"fields"`
}

// FormFieldValue is one (index, value) pair for the fill_form action.
type FormFieldValue struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// FormFieldResult reports per-field success for fill_form's atomic-per-field
// contract (spec.md §4.3).
type FormFieldResult struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Snapshot is an immutable, index-addressed view of a page (spec.md §3.1).
type Snapshot struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	ReadyState  string    `json:"ready_state"`
	ScrollX     float64   `json:"scroll_x"`
	ScrollY     float64   `json:"scroll_y"`
	CursorX     float64   `json:"cursor_x"`
	CursorY     float64   `json:"cursor_y"`
	Viewport    Viewport  `json:"viewport"`
	Elements    []Element `json:"elements"`
	Forms       []FormGroup `json:"forms"`
	ContentHash string    `json:"content_hash"`
}

// ComputeContentHash derives the stable content_hash over (url, ordered
// element signatures), resolving the Open Question in spec.md §9 ("Exact
// hashing function for content_hash... choose and document a canonical
// normalization"): SHA-256 over the URL followed by each element's
// (tag, role, type, name, id) tuple in capture order, newline-joined. Text
// content and bbox are excluded so that pure re-layouts (e.g. a scroll that
// moves bounding boxes but adds/removes nothing) do not change the hash,
// while added/removed/reordered elements do.
func ComputeContentHash(url string, elements []Element) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte{'\n'})
	for _, e := range elements {
		sig := SignatureOf(e)
		h.Write([]byte(sig.Tag))
		h.Write([]byte{'|'})
		h.Write([]byte(sig.Role))
		h.Write([]byte{'|'})
		h.Write([]byte(sig.Type))
		h.Write([]byte{'|'})
		h.Write([]byte(sig.Name))
		h.Write([]byte{'|'})
		h.Write([]byte(sig.ID))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NewSnapshot builds a Snapshot from driver-reported fields, computing and
// validating the contiguous-index invariant and the content hash.
func NewSnapshot(url, title, readyState string, scrollX, scrollY, cursorX, cursorY float64, vp Viewport, elements []Element, forms []FormGroup) *Snapshot {
	sort.SliceStable(elements, func(i, j int) bool { return elements[i].Index < elements[j].Index })
	return &Snapshot{
		URL:         url,
		Title:       title,
		ReadyState:  readyState,
		ScrollX:     scrollX,
		ScrollY:     scrollY,
		CursorX:     cursorX,
		CursorY:     cursorY,
		Viewport:    vp,
		Elements:    elements,
		Forms:       forms,
		ContentHash: ComputeContentHash(url, elements),
	}
}

// IndicesContiguous reports whether the snapshot's elements satisfy the
// dense [0..N) index invariant (spec.md §3.1 Invariant).
func (s *Snapshot) IndicesContiguous() bool {
	for i, e := range s.Elements {
		if e.Index != i {
			return false
		}
	}
	return true
}

// ElementAt resolves (snapshot, index) -> element in O(1).
func (s *Snapshot) ElementAt(index int) (Element, bool) {
	if index < 0 || index >= len(s.Elements) {
		return Element{}, false
	}
	e := s.Elements[index]
	if e.Index != index {
		// Defensive: fall back to a linear scan if indices were never
		// sorted/validated by NewSnapshot.
		for _, el := range s.Elements {
			if el.Index == index {
				return el, true
			}
		}
		return Element{}, false
	}
	return e, true
}
