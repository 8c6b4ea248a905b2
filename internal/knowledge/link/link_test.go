package link

import (
	"testing"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
)

func TestLink_TransitionsAttachToScreens(t *testing.T) {
	screens := []model.Screen{
		{ScreenID: "s1", Name: "Dashboard"},
		{ScreenID: "s2", Name: "Settings"},
	}
	transitions := []model.Transition{
		{TransitionID: "t1", FromScreenID: "s1", ToScreenID: "s2"},
	}

	result := Link(screens, nil, nil, transitions, nil, nil)

	var dashboard model.Screen
	for _, s := range result.Screens {
		if s.ScreenID == "s1" {
			dashboard = s
		}
	}
	if len(dashboard.TransitionIDs) != 1 || dashboard.TransitionIDs[0] != "t1" {
		t.Fatalf("expected dashboard to reference t1, got %+v", dashboard.TransitionIDs)
	}
}

func TestLink_BusinessFunctionFuzzyMatchesScreen(t *testing.T) {
	screens := []model.Screen{{ScreenID: "s1", Name: "User Settings"}}
	functions := []model.BusinessFunction{{FunctionID: "f1", Name: "Settings"}}

	result := Link(screens, nil, nil, nil, functions, nil)

	if len(result.BusinessFunctions[0].ScreenIDs) != 1 {
		t.Fatalf("expected business function to link to the settings screen, got %+v", result.BusinessFunctions[0])
	}
}
