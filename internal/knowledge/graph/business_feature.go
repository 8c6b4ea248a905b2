package graph

import (
	"sort"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
)

// BusinessFeatures computes the supplemental rollup report of
// SPEC_FULL.md §6: one aggregated view per ScreenGroup over the
// BusinessFunction/Workflow/UserFlow entities whose screens fall in that
// group. Used by query_knowledge's sitemap_functional query type.
func BusinessFeatures(groups map[string]model.ScreenGroup, functions []model.BusinessFunction, flows []model.UserFlow, workflows []model.Workflow) []model.BusinessFeature {
	features := make([]model.BusinessFeature, 0, len(groups))
	for _, g := range groups {
		inGroup := make(map[string]bool, len(g.ScreenIDs))
		for _, sid := range g.ScreenIDs {
			inGroup[sid] = true
		}

		feature := model.BusinessFeature{GroupID: g.GroupID, GroupName: g.Name, ScreenCount: len(g.ScreenIDs)}
		for _, f := range functions {
			if anyScreenIn(f.ScreenIDs, inGroup) {
				feature.Functions = append(feature.Functions, f.Name)
			}
		}
		for _, w := range workflows {
			if anyScreenIn(w.ScreenIDs, inGroup) {
				feature.Workflows = append(feature.Workflows, w.Name)
			}
		}
		for _, uf := range flows {
			if anyScreenIn(uf.ScreenIDs, inGroup) {
				feature.UserFlows = append(feature.UserFlows, uf.Name)
			}
		}
		sort.Strings(feature.Functions)
		sort.Strings(feature.Workflows)
		sort.Strings(feature.UserFlows)
		features = append(features, feature)
	}
	sort.Slice(features, func(i, j int) bool { return features[i].GroupID < features[j].GroupID })
	return features
}

func anyScreenIn(screenIDs []string, set map[string]bool) bool {
	for _, id := range screenIDs {
		if set[id] {
			return true
		}
	}
	return false
}
