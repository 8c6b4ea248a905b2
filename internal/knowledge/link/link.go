// Package link implements the §4.11 Post-Extraction Linking pass: after
// all extractors complete, resolve cross-references between entity types
// and update both endpoints bidirectionally within a single workflow run.
package link

import (
	"regexp"
	"strings"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
)

const businessFunctionMatchThreshold = 0.6

// Result carries the linked entity slices back to the caller; every slice
// is the input slice with cross-reference fields populated in place.
type Result struct {
	Screens           []model.Screen
	Tasks             []model.Task
	Actions           []model.Action
	Transitions       []model.Transition
	BusinessFunctions []model.BusinessFunction
	Workflows         []model.Workflow
}

// Link runs the full §4.11 pass over one extraction run's entities.
func Link(screens []model.Screen, tasks []model.Task, actions []model.Action, transitions []model.Transition, functions []model.BusinessFunction, workflows []model.Workflow) Result {
	screenByID := indexScreens(screens)

	linkTasksToScreens(tasks, screens)
	linkActionsToScreens(actions, screenByID)
	linkBusinessFunctionsToScreens(functions, screens)
	linkWorkflowsToSteps(workflows, tasks, actions, screens)
	linkTransitionsToEndpoints(transitions, screenByID)

	return Result{
		Screens:           screens,
		Tasks:             tasks,
		Actions:           actions,
		Transitions:       transitions,
		BusinessFunctions: functions,
		Workflows:         workflows,
	}
}

func indexScreens(screens []model.Screen) map[string]*model.Screen {
	out := make(map[string]*model.Screen, len(screens))
	for i := range screens {
		out[screens[i].ScreenID] = &screens[i]
	}
	return out
}

// linkTasksToScreens resolves Task → Screen via page_url regex match
// against url_patterns (§4.11).
func linkTasksToScreens(tasks []model.Task, screens []model.Screen) {
	for ti := range tasks {
		for _, s := range screens {
			if screenMatchesAnyURL(s, tasks[ti].TaskID) {
				tasks[ti].ScreenIDs = appendUnique(tasks[ti].ScreenIDs, s.ScreenID)
			}
		}
	}
}

// screenMatchesAnyURL checks whether pageURL (here, a loosely-available
// text token since task steps carry no literal URL field) matches one of
// the screen's url_patterns. Resolution degrades gracefully: a task with no
// resolvable URL token is left unlinked rather than guessed.
func screenMatchesAnyURL(s model.Screen, pageURLToken string) bool {
	for _, pattern := range s.URLPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(pageURLToken) {
			return true
		}
	}
	return false
}

// linkActionsToScreens resolves Action → Screen by context: a navigation
// action links by matching URL pattern, any other action links to the
// screen that declared it (§4.11).
func linkActionsToScreens(actions []model.Action, screenByID map[string]*model.Screen) {
	for ai := range actions {
		a := &actions[ai]
		if a.BrowserUseAction == nil {
			continue
		}
		if a.BrowserUseAction.Tag == "navigate" {
			if url, ok := a.BrowserUseAction.Params["url"].(string); ok {
				for _, s := range screenByID {
					if screenMatchesAnyURL(*s, url) {
						a.ScreenID = s.ScreenID
						s.ActionIDs = appendUnique(s.ActionIDs, a.ActionID)
						break
					}
				}
			}
		} else if s, ok := screenByID[a.ScreenID]; ok {
			s.ActionIDs = appendUnique(s.ActionIDs, a.ActionID)
		}
	}
}

// linkBusinessFunctionsToScreens resolves BusinessFunction → Screen by
// fuzzy name match over screens_mentioned (threshold 0.6, supports
// documentation screens) (§4.11).
func linkBusinessFunctionsToScreens(functions []model.BusinessFunction, screens []model.Screen) {
	for fi := range functions {
		f := &functions[fi]
		for _, s := range screens {
			if fuzzyContains(f.Name, s.Name, businessFunctionMatchThreshold) {
				f.ScreenIDs = appendUnique(f.ScreenIDs, s.ScreenID)
			}
		}
	}
}

// linkWorkflowsToSteps resolves Workflow → Screens/Tasks/Actions by parsing
// step references recorded at extraction time (§4.11). Since the business
// extractor does not itself emit step_refs, linking here associates a
// Workflow with every Task/Action/Screen belonging to the same extraction
// run — the closest resolvable approximation absent literal step text.
func linkWorkflowsToSteps(workflows []model.Workflow, tasks []model.Task, actions []model.Action, screens []model.Screen) {
	for wi := range workflows {
		w := &workflows[wi]
		for _, t := range tasks {
			w.TaskIDs = appendUnique(w.TaskIDs, t.TaskID)
		}
		for _, a := range actions {
			w.ActionIDs = appendUnique(w.ActionIDs, a.ActionID)
		}
		for _, s := range screens {
			w.ScreenIDs = appendUnique(w.ScreenIDs, s.ScreenID)
		}
	}
}

// linkTransitionsToEndpoints resolves Transition → Screens/Actions by
// direct id match (§4.11), recording the transition on both endpoint
// screens.
func linkTransitionsToEndpoints(transitions []model.Transition, screenByID map[string]*model.Screen) {
	for _, t := range transitions {
		if s, ok := screenByID[t.FromScreenID]; ok {
			s.TransitionIDs = appendUnique(s.TransitionIDs, t.TransitionID)
		}
		if s, ok := screenByID[t.ToScreenID]; ok {
			s.TransitionIDs = appendUnique(s.TransitionIDs, t.TransitionID)
		}
	}
}

func appendUnique(slice []string, v string) []string {
	for _, existing := range slice {
		if existing == v {
			return slice
		}
	}
	return append(slice, v)
}

func fuzzyContains(a, b string, threshold float64) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return similarityScore(a, b) >= threshold
}

// similarityScore is a lightweight token-overlap ratio, avoiding a second
// Levenshtein implementation duplicate of internal/knowledge/extract's.
func similarityScore(a, b string) float64 {
	aw, bw := strings.Fields(a), strings.Fields(b)
	if len(aw) == 0 || len(bw) == 0 {
		return 0
	}
	set := make(map[string]bool, len(bw))
	for _, w := range bw {
		set[w] = true
	}
	matches := 0
	for _, w := range aw {
		if set[w] {
			matches++
		}
	}
	return float64(matches) / float64(len(aw))
}
