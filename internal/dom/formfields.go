package dom

import "strings"

// FormFieldSlots is the result of find_form_fields auto-discovery (§4.3):
// nulls mean the slot could not be resolved; the caller falls back to
// send_keys("Enter").
type FormFieldSlots struct {
	UsernameIndex *int `json:"username_index,omitempty"`
	PasswordIndex *int `json:"password_index,omitempty"`
	SubmitIndex   *int `json:"submit_index,omitempty"`
}

var usernameKeywords = []string{"email", "username", "user", "login", "account"}
var loginButtonKeywords = []string{"login", "sign in", "submit"}

// FindFormFields scans a snapshot's elements for username/password/submit
// candidates using the heuristic priority of §4.3: attribute-type match
// beats semantic keyword match beats button-text match.
func FindFormFields(s *Snapshot) FormFieldSlots {
	var slots FormFieldSlots

	for i := range s.Elements {
		e := s.Elements[i]
		t := strings.ToLower(e.Attr("type"))
		if slots.PasswordIndex == nil && t == "password" {
			idx := e.Index
			slots.PasswordIndex = &idx
		}
		if slots.UsernameIndex == nil && t == "email" {
			idx := e.Index
			slots.UsernameIndex = &idx
		}
		if slots.SubmitIndex == nil && t == "submit" {
			idx := e.Index
			slots.SubmitIndex = &idx
		}
	}

	if slots.UsernameIndex == nil {
		slots.UsernameIndex = findBySemanticKeyword(s, usernameKeywords, func(e Element) bool {
			return e.Tag == "input" && strings.ToLower(e.Attr("type")) != "password"
		})
	}

	if slots.SubmitIndex == nil {
		slots.SubmitIndex = findByButtonText(s, loginButtonKeywords)
	}

	return slots
}

func findBySemanticKeyword(s *Snapshot, keywords []string, filter func(Element) bool) *int {
	for _, e := range s.Elements {
		if !filter(e) {
			continue
		}
		haystack := strings.ToLower(e.Attr("name") + " " + e.Attr("id") + " " + e.Attr("placeholder"))
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				idx := e.Index
				return &idx
			}
		}
	}
	return nil
}

func findByButtonText(s *Snapshot, keywords []string) *int {
	for _, e := range s.Elements {
		if e.Tag != "button" && e.Attr("role") != "button" {
			continue
		}
		text := strings.ToLower(e.Text)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				idx := e.Index
				return &idx
			}
		}
	}
	return nil
}
