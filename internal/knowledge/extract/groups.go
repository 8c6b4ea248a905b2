package extract

import (
	"strings"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
)

// defaultRecoveryPriorities assigns the standard recovery-edge priority
// ladder of §4.8 step 8: "dashboard=1/reliability 1.0, settings=2/0.9,
// back=3/0.8" — lower priority value is the safer, more preferred recovery
// route.
var defaultRecoveryPriorities = []struct {
	nameContains string
	priority     int
	reliability  float64
}{
	{"dashboard", 1, 1.0},
	{"home", 1, 1.0},
	{"settings", 2, 0.9},
	{"back", 3, 0.8},
}

// AssignGroups partitions screens into functional-area ScreenGroups by a
// keyword match over each screen's name, and attaches the §4.8 step 8
// default recovery-edge ladder. Every screen belongs to exactly one group;
// screens matching no keyword fall into a catch-all "general" group, so the
// §3.3 invariant "every screen belongs to at least one group" holds.
func AssignGroups(knowledgeID string, screens []model.Screen) []model.ScreenGroup {
	byName := map[string]*model.ScreenGroup{}
	order := []string{}

	groupFor := func(name string) *model.ScreenGroup {
		if g, ok := byName[name]; ok {
			return g
		}
		g := &model.ScreenGroup{KnowledgeID: knowledgeID, GroupID: wire.NewID(), Name: name}
		byName[name] = g
		order = append(order, name)
		return g
	}

	for _, s := range screens {
		groupName := "general"
		lower := strings.ToLower(s.Name)
		for _, p := range defaultRecoveryPriorities {
			if strings.Contains(lower, p.nameContains) {
				groupName = p.nameContains
				break
			}
		}
		g := groupFor(groupName)
		g.ScreenIDs = append(g.ScreenIDs, s.ScreenID)
	}

	groups := make([]model.ScreenGroup, 0, len(order))
	for _, name := range order {
		g := byName[name]
		g.RecoveryEdges = recoveryEdgesFor(name, g.ScreenIDs)
		groups = append(groups, *g)
	}
	return groups
}

func recoveryEdgesFor(groupName string, screenIDs []string) []model.RecoveryEdge {
	if len(screenIDs) == 0 {
		return nil
	}
	priority, reliability := 3, 0.8
	for _, p := range defaultRecoveryPriorities {
		if p.nameContains == groupName {
			priority, reliability = p.priority, p.reliability
			break
		}
	}
	return []model.RecoveryEdge{{ScreenID: screenIDs[0], Priority: priority, Reliability: reliability}}
}
