package dom

import "strings"

// synthesizeEvents derives the closed semantic-event vocabulary of §4.5 from
// a computed StateDiff. Rules are additive and evaluated in a fixed order so
// that identical (pre, post) snapshots always produce identical events in
// identical order (§4.5: "same snapshots => same events, same order").
func synthesizeEvents(pre, post *Snapshot, d *StateDiff) []SemanticEvent {
	var events []SemanticEvent

	if d.NavigationChanges.URLChanged {
		if pre.ReadyState != "complete" && post.ReadyState == "complete" {
			events = append(events, SemanticEvent{EventType: "navigation", EventName: "page_load_complete", Confidence: 0.95})
		} else {
			events = append(events, SemanticEvent{EventType: "navigation", EventName: "client_side_route", Confidence: 0.8})
		}
		if sameDocument(pre.URL, post.URL) {
			events = append(events, SemanticEvent{EventType: "navigation", EventName: "hash_change", Confidence: 0.7})
		}
	}

	for _, a := range d.DOMChanges.Added {
		role := strings.ToLower(a.Role)
		text := strings.ToLower(a.Text)
		switch {
		case role == "dialog" || containsAny(a.Attrs, "modal"):
			events = append(events, SemanticEvent{EventType: "ui_state", EventName: "modal_opened", TargetSelector: a.Selector, Confidence: 0.85})
		case role == "listbox" || a.Tag == "select":
			events = append(events, SemanticEvent{EventType: "ui_state", EventName: "dropdown_expanded", TargetSelector: a.Selector, Confidence: 0.75})
		case containsAny(a.Attrs, "toast", "snackbar"):
			events = append(events, SemanticEvent{EventType: "feedback", EventName: "toast_notification", TargetSelector: a.Selector, Confidence: 0.8})
		case strings.Contains(text, "error") || containsAny(a.Attrs, "error"):
			events = append(events, SemanticEvent{EventType: "feedback", EventName: "error_banner_appeared", TargetSelector: a.Selector, Confidence: 0.7})
		case strings.Contains(text, "success") || strings.Contains(text, "saved") || strings.Contains(text, "complete"):
			events = append(events, SemanticEvent{EventType: "feedback", EventName: "success_message_appeared", TargetSelector: a.Selector, Confidence: 0.7})
		}
	}

	for _, r := range d.DOMChanges.Removed {
		if strings.Contains(strings.ToLower(r.Selector), "modal") {
			events = append(events, SemanticEvent{EventType: "ui_state", EventName: "modal_closed", TargetSelector: r.Selector, Confidence: 0.75})
		}
	}

	for _, fc := range d.FormStateChanges {
		hasInvalid := false
		for _, f := range fc.FieldsChanged {
			if f.ValidationState == "invalid" {
				hasInvalid = true
				events = append(events, SemanticEvent{EventType: "form", EventName: "validation_error", Confidence: 0.8})
			}
		}
		if !hasInvalid && len(fc.FieldsChanged) > 0 && fc.FormValid {
			events = append(events, SemanticEvent{EventType: "form", EventName: "form_submitted", Confidence: 0.6})
		}
	}

	if d.AccessibilityChanges.FocusChanged != nil {
		events = append(events, SemanticEvent{EventType: "form", EventName: "field_focused", Confidence: 0.6})
	}

	for _, m := range d.DOMChanges.Modified {
		lower := strings.ToLower(m.NewText)
		switch {
		case strings.Contains(lower, "login successful") || strings.Contains(lower, "welcome back"):
			events = append(events, SemanticEvent{EventType: "auth", EventName: "login_success", TargetSelector: m.Selector, Confidence: 0.65})
		case strings.Contains(lower, "invalid password") || strings.Contains(lower, "invalid credentials") || strings.Contains(lower, "login failed"):
			events = append(events, SemanticEvent{EventType: "auth", EventName: "login_failure", TargetSelector: m.Selector, Confidence: 0.65})
		case m.TextChanged && (strings.Contains(m.Selector, "table") || strings.Contains(m.Selector, "list")):
			events = append(events, SemanticEvent{EventType: "data", EventName: "list_updated", TargetSelector: m.Selector, Confidence: 0.5})
		}
	}

	if len(d.DOMChanges.Added) > 3 {
		events = append(events, SemanticEvent{EventType: "data", EventName: "pagination_changed", Confidence: 0.4})
	}

	return events
}

func sameDocument(a, b string) bool {
	ai := strings.IndexByte(a, '#')
	bi := strings.IndexByte(b, '#')
	base := func(s string, i int) string {
		if i < 0 {
			return s
		}
		return s[:i]
	}
	return base(a, ai) == base(b, bi) && a != b
}

func containsAny(attrs map[string]string, needles ...string) bool {
	for _, v := range attrs {
		lv := strings.ToLower(v)
		for _, n := range needles {
			if strings.Contains(lv, n) {
				return true
			}
		}
	}
	return false
}
