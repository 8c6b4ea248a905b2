package dom

import "sort"

// ElementAdded describes a newly-present element in a diff (§4.5 dom_changes.added).
type ElementAdded struct {
	Index    int               `json:"index"`
	Selector string            `json:"selector"`
	Tag      string            `json:"tag"`
	Role     string            `json:"role,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	BBox     *BBox             `json:"bbox,omitempty"`
}

// ElementRemoved describes an element present pre-diff but absent post-diff.
type ElementRemoved struct {
	Index    int    `json:"index"`
	Selector string `json:"selector"`
	Tag      string `json:"tag"`
}

// AttrChange is an {old,new} pair for one changed attribute.
type AttrChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// ElementModified describes an element whose signature persisted but whose
// observable attributes/classes/text changed between snapshots.
type ElementModified struct {
	Index    int                   `json:"index"`
	Selector string                `json:"selector"`
	Attrs    map[string]AttrChange `json:"attrs,omitempty"`
	ClassesAdded   []string        `json:"classes_added,omitempty"`
	ClassesRemoved []string        `json:"classes_removed,omitempty"`
	TextChanged    bool            `json:"text_changed,omitempty"`
	OldText        string          `json:"old_text,omitempty"`
	NewText        string          `json:"new_text,omitempty"`
}

// ElementMoved describes an element whose signature matched across snapshots
// at a different index (the dense-index renumber case).
type ElementMoved struct {
	FromIndex int    `json:"from_index"`
	ToIndex   int    `json:"to_index"`
	Selector  string `json:"selector"`
}

// DOMChanges is the element-set/attribute delta portion of a StateDiff.
type DOMChanges struct {
	Added    []ElementAdded    `json:"added,omitempty"`
	Removed  []ElementRemoved  `json:"removed,omitempty"`
	Modified []ElementModified `json:"modified,omitempty"`
	Moved    []ElementMoved    `json:"moved,omitempty"`
}

// NavigationChanges reports url/title transitions between snapshots.
type NavigationChanges struct {
	URLChanged   bool   `json:"url_changed"`
	TitleChanged bool   `json:"title_changed"`
	URL          string `json:"url,omitempty"`
	Title        string `json:"title,omitempty"`
}

// FieldChange is one field's validation/value transition within a form.
type FieldChange struct {
	FieldIndex      int    `json:"field_index"`
	ValidationState string `json:"validation_state,omitempty"`
	ValueChanged    bool   `json:"value_changed"`
}

// FormStateChange reports one form's field-level transitions.
type FormStateChange struct {
	FormIndex     int           `json:"form_index"`
	FieldsChanged []FieldChange `json:"fields_changed,omitempty"`
	FormValid     bool          `json:"form_valid"`
}

// FocusChange reports an accessibility focus-target transition.
type FocusChange struct {
	FromIndex int `json:"from_index"`
	ToIndex   int `json:"to_index"`
}

// AccessibilityChanges reports accessibility-relevant transitions.
type AccessibilityChanges struct {
	FocusChanged *FocusChange `json:"focus_changed,omitempty"`
}

// SemanticEvent is one deterministically-synthesized high-level event
// derived from a StateDiff (§4.5 semantic event synthesis).
type SemanticEvent struct {
	EventType      string  `json:"event_type"`
	EventName      string  `json:"event_name"`
	TargetSelector string  `json:"target_selector,omitempty"`
	Confidence     float64 `json:"confidence"`
}

// DiffType distinguishes a diff computed against the immediately prior
// snapshot from one computed against an arbitrary reference snapshot.
type DiffType string

const (
	DiffIncremental DiffType = "incremental"
	DiffFull        DiffType = "full"
)

// FormatVersion is the StateDiff wire format version (§6.5).
const FormatVersion = "1.0"

// StateDiff is the structured output of the State Diff Engine (§4.5).
type StateDiff struct {
	FormatVersion        string               `json:"format_version"`
	DiffType             DiffType             `json:"diff_type"`
	PreHash              string               `json:"pre_hash"`
	PostHash             string               `json:"post_hash"`
	DOMChanges           DOMChanges           `json:"dom_changes"`
	NavigationChanges    NavigationChanges    `json:"navigation_changes"`
	FormStateChanges     []FormStateChange    `json:"form_state_changes,omitempty"`
	AccessibilityChanges AccessibilityChanges `json:"accessibility_changes"`
	SemanticEvents       []SemanticEvent      `json:"semantic_events,omitempty"`
}

func selectorFor(e Element) string {
	if id := e.Attr("id"); id != "" {
		return "#" + id
	}
	if name := e.Attr("name"); name != "" {
		return e.Tag + "[name=\"" + name + "\"]"
	}
	return e.Tag
}

// Diff computes the StateDiff between pre and post snapshots by
// signature-based bipartite matching with a stable index-order tiebreak
// (§4.4 "Implementation freedom"): elements are first grouped by Signature;
// within a signature group, pre and post elements pair off in index order.
// Unpaired pre elements are removed, unpaired post elements are added, and
// paired elements at different indices are moved.
func Diff(pre, post *Snapshot, diffType DiffType) *StateDiff {
	d := &StateDiff{
		FormatVersion: FormatVersion,
		DiffType:      diffType,
		PreHash:       pre.ContentHash,
		PostHash:      post.ContentHash,
		NavigationChanges: NavigationChanges{
			URLChanged:   pre.URL != post.URL,
			TitleChanged: pre.Title != post.Title,
			URL:          post.URL,
			Title:        post.Title,
		},
	}

	preBySig := groupBySignature(pre.Elements)
	postBySig := groupBySignature(post.Elements)

	seenSig := map[Signature]bool{}
	for sig := range preBySig {
		seenSig[sig] = true
	}
	for sig := range postBySig {
		seenSig[sig] = true
	}

	sigs := make([]Signature, 0, len(seenSig))
	for sig := range seenSig {
		sigs = append(sigs, sig)
	}
	sort.Slice(sigs, func(i, j int) bool { return sigKey(sigs[i]) < sigKey(sigs[j]) })

	for _, sig := range sigs {
		preEls := preBySig[sig]
		postEls := postBySig[sig]
		n := len(preEls)
		if len(postEls) < n {
			n = len(postEls)
		}
		for i := 0; i < n; i++ {
			preEl, postEl := preEls[i], postEls[i]
			if mod := diffElement(preEl, postEl); mod != nil {
				d.DOMChanges.Modified = append(d.DOMChanges.Modified, *mod)
			}
			if preEl.Index != postEl.Index {
				d.DOMChanges.Moved = append(d.DOMChanges.Moved, ElementMoved{
					FromIndex: preEl.Index,
					ToIndex:   postEl.Index,
					Selector:  selectorFor(postEl),
				})
			}
		}
		for i := n; i < len(preEls); i++ {
			e := preEls[i]
			d.DOMChanges.Removed = append(d.DOMChanges.Removed, ElementRemoved{
				Index: e.Index, Selector: selectorFor(e), Tag: e.Tag,
			})
		}
		for i := n; i < len(postEls); i++ {
			e := postEls[i]
			bbox := e.BBox
			d.DOMChanges.Added = append(d.DOMChanges.Added, ElementAdded{
				Index: e.Index, Selector: selectorFor(e), Tag: e.Tag, Role: e.Role,
				Text: e.Text, Attrs: e.Attributes, BBox: &bbox,
			})
		}
	}

	sort.Slice(d.DOMChanges.Added, func(i, j int) bool { return d.DOMChanges.Added[i].Index < d.DOMChanges.Added[j].Index })
	sort.Slice(d.DOMChanges.Removed, func(i, j int) bool { return d.DOMChanges.Removed[i].Index < d.DOMChanges.Removed[j].Index })
	sort.Slice(d.DOMChanges.Modified, func(i, j int) bool { return d.DOMChanges.Modified[i].Index < d.DOMChanges.Modified[j].Index })
	sort.Slice(d.DOMChanges.Moved, func(i, j int) bool { return d.DOMChanges.Moved[i].FromIndex < d.DOMChanges.Moved[j].FromIndex })

	d.FormStateChanges = diffForms(pre, post)
	d.SemanticEvents = synthesizeEvents(pre, post, d)
	return d
}

func sigKey(s Signature) string {
	return s.Tag + "\x00" + s.Role + "\x00" + s.Type + "\x00" + s.Name + "\x00" + s.ID + "\x00" + s.NormalizedText
}

func groupBySignature(elements []Element) map[Signature][]Element {
	out := map[Signature][]Element{}
	// Stable order within a signature group: capture (index) order.
	ordered := append([]Element(nil), elements...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	for _, e := range ordered {
		sig := SignatureOf(e)
		out[sig] = append(out[sig], e)
	}
	return out
}

func diffElement(pre, post Element) *ElementModified {
	attrs := map[string]AttrChange{}
	keys := map[string]bool{}
	for k := range pre.Attributes {
		keys[k] = true
	}
	for k := range post.Attributes {
		keys[k] = true
	}
	for k := range keys {
		ov, nv := pre.Attr(k), post.Attr(k)
		if ov != nv {
			if k == "class" {
				continue // classes are reported separately below
			}
			attrs[k] = AttrChange{Old: ov, New: nv}
		}
	}

	added, removed := diffClasses(pre.Attr("class"), post.Attr("class"))
	textChanged := pre.Text != post.Text

	if len(attrs) == 0 && len(added) == 0 && len(removed) == 0 && !textChanged {
		return nil
	}

	m := &ElementModified{
		Index:          post.Index,
		Selector:       selectorFor(post),
		ClassesAdded:   added,
		ClassesRemoved: removed,
		TextChanged:    textChanged,
	}
	if len(attrs) > 0 {
		m.Attrs = attrs
	}
	if textChanged {
		m.OldText, m.NewText = pre.Text, post.Text
	}
	return m
}

func diffClasses(oldClass, newClass string) (added, removed []string) {
	oldSet := classSet(oldClass)
	newSet := classSet(newClass)
	for c := range newSet {
		if !oldSet[c] {
			added = append(added, c)
		}
	}
	for c := range oldSet {
		if !newSet[c] {
			removed = append(removed, c)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func classSet(class string) map[string]bool {
	out := map[string]bool{}
	start := 0
	for i := 0; i <= len(class); i++ {
		if i == len(class) || class[i] == ' ' {
			if i > start {
				out[class[start:i]] = true
			}
			start = i + 1
		}
	}
	return out
}

func diffForms(pre, post *Snapshot) []FormStateChange {
	preForms := map[int]FormGroup{}
	for _, f := range pre.Forms {
		preForms[f.Index] = f
	}
	var out []FormStateChange
	for _, pf := range post.Forms {
		of, ok := preForms[pf.Index]
		if !ok {
			continue
		}
		oldFields := map[int]FormField{}
		for _, f := range of.Fields {
			oldFields[f.Index] = f
		}
		var changes []FieldChange
		valid := true
		for _, f := range pf.Fields {
			if f.Required && f.ValidationState == "invalid" {
				valid = false
			}
			old, existed := oldFields[f.Index]
			if !existed || old.ValidationState != f.ValidationState {
				changes = append(changes, FieldChange{
					FieldIndex:      f.Index,
					ValidationState: f.ValidationState,
					ValueChanged:    true,
				})
			}
		}
		if len(changes) > 0 {
			out = append(out, FormStateChange{FormIndex: pf.Index, FieldsChanged: changes, FormValid: valid})
		}
	}
	return out
}
