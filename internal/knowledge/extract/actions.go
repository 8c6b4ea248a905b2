package extract

import (
	"regexp"
	"strings"

	"github.com/10xr-agents/browse-automation-service/internal/action"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
)

// canonicalActionTypes are the six action types §4.9.3 extractors detect
// from prose, distinct from the full runtime action.Tag vocabulary.
const (
	TypeClick        = "click"
	TypeType         = "type"
	TypeNavigate     = "navigate"
	TypeSelectOption = "select_option"
	TypeScroll       = "scroll"
	TypeWait         = "wait"
)

var actionVerbRe = regexp.MustCompile(`(?i)\b(click|tap|press|type|enter|navigate|go to|select|choose|scroll|wait)\b[^.\n]*`)

var nonIdempotentVerbs = []string{"submit", "create", "delete", "remove", "purchase", "pay", "send"}
var idempotentVerbs = []string{"type", "navigate", "scroll", "select", "view", "read"}

// ExtractActions implements §4.9.3.
func ExtractActions(knowledgeID string, chunks []model.ContentChunk) []model.Action {
	var actions []model.Action
	for _, chunk := range chunks {
		for _, m := range actionVerbRe.FindAllString(chunk.Text, -1) {
			typ, ok := canonicalType(m)
			if !ok {
				continue
			}
			target := extractTarget(m)
			selector := model.Selectors{CSS: guessSelector(typ, target)}
			translated, confidence := translate(typ, selector, target)

			a := model.Action{
				KnowledgeID:      knowledgeID,
				ActionID:         wire.NewID(),
				Type:             typ,
				SelectorStrategy: selector,
				Idempotent:       isIdempotent(m),
				BrowserUseAction: translated,
				ConfidenceScore:  confidence,
				Provenance: model.Provenance{
					ExtractionSource:     chunk.ChunkID,
					ExtractionConfidence: confidence,
				},
			}
			if a.ConfidenceScore < model.MinConfidenceThreshold {
				continue
			}
			actions = append(actions, a)
		}
	}
	return actions
}

func canonicalType(phrase string) (string, bool) {
	lower := strings.ToLower(phrase)
	switch {
	case strings.Contains(lower, "click"), strings.Contains(lower, "tap"), strings.Contains(lower, "press"):
		return TypeClick, true
	case strings.Contains(lower, "type"), strings.Contains(lower, "enter"):
		return TypeType, true
	case strings.Contains(lower, "navigate"), strings.Contains(lower, "go to"):
		return TypeNavigate, true
	case strings.Contains(lower, "select"), strings.Contains(lower, "choose"):
		return TypeSelectOption, true
	case strings.Contains(lower, "scroll"):
		return TypeScroll, true
	case strings.Contains(lower, "wait"):
		return TypeWait, true
	default:
		return "", false
	}
}

func isIdempotent(phrase string) bool {
	lower := strings.ToLower(phrase)
	for _, v := range nonIdempotentVerbs {
		if strings.Contains(lower, v) {
			return false
		}
	}
	for _, v := range idempotentVerbs {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return true
}

var quotedTargetRe = regexp.MustCompile(`"([^"]+)"`)

func extractTarget(phrase string) string {
	if m := quotedTargetRe.FindStringSubmatch(phrase); m != nil {
		return m[1]
	}
	fields := strings.Fields(phrase)
	if len(fields) > 1 {
		return strings.Join(fields[1:], " ")
	}
	return ""
}

func guessSelector(typ, target string) string {
	switch typ {
	case TypeClick:
		return `*:contains("` + target + `")`
	case TypeType:
		return `input[name="` + strings.ToLower(strings.ReplaceAll(target, " ", "_")) + `"]`
	default:
		return ""
	}
}

// translate is the Action-Translator of §4.8 step 4: a pure function from a
// knowledge-tier action spec to a runtime action.Tag + params. Confidence
// reflects how cleanly the canonical type mapped to a runtime tag.
func translate(typ string, selector model.Selectors, target string) (*model.BrowserUseAction, float64) {
	switch typ {
	case TypeClick:
		return &model.BrowserUseAction{Tag: string(action.Click), Params: map[string]any{"selector": selector.CSS}}, 0.8
	case TypeType:
		return &model.BrowserUseAction{Tag: string(action.Type), Params: map[string]any{"selector": selector.CSS, "text": target}}, 0.7
	case TypeNavigate:
		return &model.BrowserUseAction{Tag: string(action.Navigate), Params: map[string]any{"url": target}}, 0.6
	case TypeSelectOption:
		return &model.BrowserUseAction{Tag: string(action.SelectDropdown), Params: map[string]any{"text": target}}, 0.6
	case TypeScroll:
		return &model.BrowserUseAction{Tag: string(action.Scroll), Params: map[string]any{"direction": "down", "amount": 1}}, 0.5
	case TypeWait:
		return &model.BrowserUseAction{Tag: string(action.Wait), Params: map[string]any{"seconds": 1.0}}, 0.5
	default:
		return nil, 0
	}
}
