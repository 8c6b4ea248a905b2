package extract

import (
	"regexp"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
)

const transitionMatchThreshold = 0.8

// transitionPatterns are the 3 pattern families of §4.9.4.
var transitionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:clicking|selecting|submitting) (.+?) (?:takes you|navigates|redirects) (?:to|from) (.+?) to (.+)`),
	regexp.MustCompile(`(?i)from (.+?),? (?:click|press|select) (.+?) to (?:go to|reach|open) (.+)`),
	regexp.MustCompile(`(?i)(.+?) leads to (.+?) via (.+)`),
}

// ExtractTransitions implements §4.9.4: detects the 3 pattern families,
// resolves endpoints against already-extracted screens by fuzzy name match,
// and rejects transitions whose endpoints cannot be resolved.
func ExtractTransitions(knowledgeID string, chunks []model.ContentChunk, screens []model.Screen) []model.Transition {
	names := make(map[string]string, len(screens))
	for _, s := range screens {
		names[s.ScreenID] = s.Name
	}

	var transitions []model.Transition
	for _, chunk := range chunks {
		for _, re := range transitionPatterns {
			for _, m := range re.FindAllStringSubmatch(chunk.Text, -1) {
				from, to, trigger := resolveTriple(m)
				fromID, fromScore, fromOK := bestMatch(from, names)
				toID, toScore, toOK := bestMatch(to, names)
				if !fromOK || !toOK || fromScore < transitionMatchThreshold || toScore < transitionMatchThreshold {
					continue
				}

				t := model.Transition{
					KnowledgeID:     knowledgeID,
					TransitionID:    wire.NewID(),
					FromScreenID:    fromID,
					ToScreenID:      toID,
					TriggerActionID: wire.NewID(),
					Conditions:      extractConditions(chunk.Text),
					Reliability:     0.95,
					Cost:            model.TransitionCost{},
					Provenance: model.Provenance{
						ExtractionSource:     chunk.ChunkID,
						ExtractionConfidence: (fromScore + toScore) / 2,
					},
				}
				_ = trigger
				transitions = append(transitions, t)
			}
		}
	}
	return transitions
}

// resolveTriple interprets a 3-capture-group match uniformly regardless of
// which pattern family produced it: group order is (from, trigger, to) for
// the first two families and (from, to, trigger) for the third.
func resolveTriple(m []string) (from, to, trigger string) {
	if len(m) != 4 {
		return "", "", ""
	}
	return m[1], m[3], m[2]
}

var conditionListRe = regexp.MustCompile(`(?i)only if (.+?)(?:\.|\n|$)`)
var conditionInlineRe = regexp.MustCompile(`(?i)when (.+?)(?:\.|\n|$)`)

func extractConditions(text string) []string {
	var conditions []string
	for _, m := range conditionListRe.FindAllStringSubmatch(text, -1) {
		conditions = append(conditions, m[1])
	}
	for _, m := range conditionInlineRe.FindAllStringSubmatch(text, -1) {
		conditions = append(conditions, m[1])
	}
	return conditions
}
