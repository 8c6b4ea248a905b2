package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
)

var stepLineRe = regexp.MustCompile(`(?m)^\s*(\d+)[.)]\s*(.+)$`)

var backwardRefRe = regexp.MustCompile(`(?i)go back to step (\d+)`)

// loopPatterns are the 8 loop-shape phrasings of §4.9.2, each converted
// into an IteratorSpec rather than left as a backward reference in Steps.
var loopPatterns = []struct {
	re  *regexp.Regexp
	typ model.IteratorType
}{
	{regexp.MustCompile(`(?i)for each (.+?) in (.+)`), model.IteratorCollection},
	{regexp.MustCompile(`(?i)repeat until (.+)`), model.IteratorCollection},
	{regexp.MustCompile(`(?i)delete all (.+)`), model.IteratorCollection},
	{regexp.MustCompile(`(?i)iterate over (.+)`), model.IteratorCollection},
	{regexp.MustCompile(`(?i)for every (.+)`), model.IteratorCollection},
	{regexp.MustCompile(`(?i)go to (?:the )?next page`), model.IteratorPagination},
	{regexp.MustCompile(`(?i)repeat for each page`), model.IteratorPagination},
	{regexp.MustCompile(`(?i)while there (?:are|is) more (.+)`), model.IteratorCollection},
}

var volatilityKeywords = map[model.Volatility][]string{
	model.VolatilityHigh:   {"token", "password", "otp", "code"},
	model.VolatilityMedium: {"session", "cart", "timestamp"},
	model.VolatilityLow:    {"name", "email", "username", "id"},
}

// ExtractTasks implements §4.9.2: detect procedural text, extract an
// ordered step sequence enforcing the no-backward-reference invariant, and
// convert detected loops into an IteratorSpec.
func ExtractTasks(knowledgeID string, chunks []model.ContentChunk) []model.Task {
	var tasks []model.Task
	for _, chunk := range chunks {
		stepMatches := stepLineRe.FindAllStringSubmatch(chunk.Text, -1)
		if len(stepMatches) < 2 {
			continue // not procedural text
		}

		iter := detectIterator(chunk.Text)
		steps := buildSteps(stepMatches, iter.Type != model.IteratorNone)
		if steps == nil {
			continue // validator rejected a backward reference
		}

		task := model.Task{
			KnowledgeID:  knowledgeID,
			TaskID:       wire.NewID(),
			Steps:        steps,
			IOSpec:       extractIOSpec(chunk.Text),
			IteratorSpec: iter,
			Provenance: model.Provenance{
				ExtractionSource:     chunk.ChunkID,
				ExtractionConfidence: 0.6,
			},
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// buildSteps rejects the whole candidate if any step line contains a
// backward reference (§4.9.2 "validator scans for phrases like 'go back to
// step k<current'"), unless the loop itself already absorbed the phrase
// into an IteratorSpec.
func buildSteps(matches [][]string, hasIterator bool) []model.TaskStep {
	var steps []model.TaskStep
	for _, m := range matches {
		current, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		text := m[2]
		if !hasIterator {
			if back := backwardRefRe.FindStringSubmatch(text); back != nil {
				target, _ := strconv.Atoi(back[1])
				if target < current {
					return nil
				}
			}
		}
		steps = append(steps, model.TaskStep{ActionID: wire.NewID()})
	}
	return steps
}

func detectIterator(text string) model.IteratorSpec {
	for _, lp := range loopPatterns {
		if m := lp.re.FindStringSubmatch(text); m != nil {
			spec := model.IteratorSpec{Type: lp.typ, MaxIterations: 1000}
			if len(m) > 1 {
				spec.CollectionSelector = strings.TrimSpace(m[len(m)-1])
			}
			return spec
		}
	}
	return model.IteratorSpec{Type: model.IteratorNone}
}

var ioVarRe = regexp.MustCompile(`(?i)\b(input|output)s?:\s*([a-zA-Z_][\w ,]*)`)

func extractIOSpec(text string) model.IOSpec {
	var spec model.IOSpec
	for _, m := range ioVarRe.FindAllStringSubmatch(text, -1) {
		kind := strings.ToLower(m[1])
		for _, name := range strings.Split(m[2], ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			v := model.IOVariable{Name: name, Type: "string", Volatility: volatilityOf(name)}
			if kind == "input" {
				spec.Inputs = append(spec.Inputs, v)
			} else {
				spec.Outputs = append(spec.Outputs, v)
			}
		}
	}
	for _, v := range spec.Inputs {
		spec.VariableResolutionOrder = append(spec.VariableResolutionOrder, v.Name)
	}
	return spec
}

func volatilityOf(name string) model.Volatility {
	lower := strings.ToLower(name)
	for _, kw := range volatilityKeywords[model.VolatilityHigh] {
		if strings.Contains(lower, kw) {
			return model.VolatilityHigh
		}
	}
	for _, kw := range volatilityKeywords[model.VolatilityMedium] {
		if strings.Contains(lower, kw) {
			return model.VolatilityMedium
		}
	}
	return model.VolatilityLow
}
