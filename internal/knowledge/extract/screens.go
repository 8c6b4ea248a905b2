// Package extract implements the five pure-function knowledge extractor
// families of spec.md §4.9. Every extractor takes already-ingested
// model.ContentChunk values and prior-extracted context and returns typed
// entities with provenance, rejecting low-confidence candidates per the
// §4.9 preamble (default threshold model.MinConfidenceThreshold).
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// cleanName strips HTML, caps length, and rejects names that read like
// documentation prose rather than a proper-noun screen/entity name
// (§4.9.1 "Entity names are cleaned").
func cleanName(raw string) (string, bool) {
	name := htmlTagRe.ReplaceAllString(raw, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if len(name) > 80 {
		name = name[:80]
	}
	if looksLikeProse(name) {
		return "", false
	}
	return name, true
}

func looksLikeProse(s string) bool {
	words := strings.Fields(s)
	return len(words) > 8 || strings.HasSuffix(s, ".")
}

var screenHeadingRe = regexp.MustCompile(`(?im)^#{1,4}\s*(.+?)\s*(screen|page|view|dashboard)?\s*$`)

var regionKeywords = map[model.RegionType][]string{
	model.RegionHeader:     {"header", "top bar", "masthead"},
	model.RegionSidebar:    {"sidebar", "side panel", "left nav"},
	model.RegionMain:       {"main content", "body", "content area"},
	model.RegionFooter:     {"footer"},
	model.RegionModal:      {"modal", "dialog", "popup"},
	model.RegionNavigation: {"navigation", "nav bar", "menu"},
}

var urlPatternFamilies = []*regexp.Regexp{
	regexp.MustCompile(`https?://[^\s)]+`),                 // full URLs
	regexp.MustCompile(`\b[\w.-]+\.[a-z]{2,}/[\w/-]*`),      // domain+path
	regexp.MustCompile(`(?:^|\s)(/[\w-]+(?:/[\w-]+)*)`),     // relative paths
	regexp.MustCompile("`(/[\\w{}:/-]+)`"),                  // code-doc URL patterns
}

// docKeywords mark a sentence fragment as documentation prose rather than a
// state indicator, so it is discarded from state_signature synthesis.
var docKeywords = []string{"note:", "see also", "for example", "in general"}

// ExtractScreens implements §4.9.1.
func ExtractScreens(knowledgeID string, chunks []model.ContentChunk) []model.Screen {
	var screens []model.Screen
	for _, chunk := range chunks {
		matches := screenHeadingRe.FindAllStringSubmatch(chunk.Text, -1)
		for _, m := range matches {
			name, ok := cleanName(m[1])
			if !ok {
				continue
			}
			confidence := 0.5
			if m[2] != "" {
				confidence = 0.8
			}
			if confidence < model.MinConfidenceThreshold {
				continue
			}

			contentType := model.ContentWebUI
			if chunk.SourceType == "documentation" {
				contentType = model.ContentDocumentation
			} else if chunk.SourceType == "video" {
				contentType = model.ContentVideoTranscript
			} else if chunk.SourceType == "api_docs" {
				contentType = model.ContentAPIDocs
			}

			sig := synthesizeStateSignature(chunk.Text, contentType)
			if matchesOwnNegatives(sig) {
				continue
			}

			screen := model.Screen{
				KnowledgeID:    knowledgeID,
				ScreenID:       wire.NewID(),
				Name:           name,
				ContentType:    contentType,
				IsActionable:   contentType == model.ContentWebUI,
				URLPatterns:    extractURLPatterns(chunk.Text),
				StateSignature: sig,
				UIElements:     extractUIElements(chunk.Text),
				Regions:        extractRegions(chunk.Text),
				Provenance: model.Provenance{
					ExtractionSource:     chunk.ChunkID,
					ExtractionConfidence: confidence,
				},
			}
			screens = append(screens, screen)
		}
	}
	return screens
}

func synthesizeStateSignature(text string, contentType model.ContentType) model.StateSignature {
	if contentType == model.ContentDocumentation {
		return model.StateSignature{}
	}
	var sig model.StateSignature
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if containsAnyDocKeyword(lower) {
			continue
		}
		switch {
		case strings.Contains(lower, "must show"), strings.Contains(lower, "required"):
			sig.Required = append(sig.Required, capToken(line))
		case strings.Contains(lower, "may show"), strings.Contains(lower, "optional"):
			sig.Optional = append(sig.Optional, capToken(line))
		case strings.Contains(lower, "must not"), strings.Contains(lower, "excludes"):
			sig.Exclusion = append(sig.Exclusion, capToken(line))
		case strings.Contains(lower, "if") && strings.Contains(lower, "you are in"):
			sig.NegativeIndicators = append(sig.NegativeIndicators, capToken(line))
		}
	}
	return sig
}

func containsAnyDocKeyword(lower string) bool {
	for _, kw := range docKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func capToken(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

// matchesOwnNegatives rejects a screen candidate whose own negative
// indicators are already satisfied by its required set, a contradiction
// signaling a misidentified screen (§4.9.1 "Reject a candidate screen that
// matches any of its own negative indicators").
func matchesOwnNegatives(sig model.StateSignature) bool {
	for _, neg := range sig.NegativeIndicators {
		for _, req := range sig.Required {
			if strings.EqualFold(neg, req) {
				return true
			}
		}
	}
	return false
}

func extractURLPatterns(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, re := range urlPatternFamilies {
		for _, m := range re.FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if m == "" || m == ".*" || seen[m] {
				continue
			}
			if isTooGeneric(m) {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

func isTooGeneric(pattern string) bool {
	return pattern == "/" || pattern == ".*" || pattern == "*"
}

var elementMentionRe = regexp.MustCompile(`(?i)\b(button|link|field|input|dropdown|checkbox|menu)\s+"([^"]+)"`)

func extractUIElements(text string) []model.UIElement {
	var elements []model.UIElement
	for _, m := range elementMentionRe.FindAllStringSubmatch(text, -1) {
		tag, label := strings.ToLower(m[1]), m[2]
		elements = append(elements, model.UIElement{
			Selectors:       model.Selectors{CSS: cssGuessFor(tag, label)},
			LayoutContext:   tag,
			ImportanceScore: importanceScore(tag),
		})
	}
	return elements
}

func cssGuessFor(tag, label string) string {
	switch tag {
	case "button":
		return `button:contains("` + label + `")`
	case "link":
		return `a:contains("` + label + `")`
	default:
		return `[name="` + strings.ToLower(strings.ReplaceAll(label, " ", "_")) + `"]`
	}
}

// importanceScore blends a size/z-index/type prior per §4.9.1; without a
// live DOM render, the element-type prior dominates.
func importanceScore(tag string) float64 {
	switch tag {
	case "button":
		return 0.9
	case "link":
		return 0.6
	case "input", "field":
		return 0.7
	default:
		return 0.4
	}
}

func extractRegions(text string) []model.Region {
	lower := strings.ToLower(text)
	var regions []model.Region
	for region, keywords := range regionKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				regions = append(regions, model.Region{Type: region})
				break
			}
		}
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Type < regions[j].Type })
	return regions
}
