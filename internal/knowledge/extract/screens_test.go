package extract

import (
	"testing"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
)

func TestExtractScreens_FindsHeadingScreens(t *testing.T) {
	chunks := []model.ContentChunk{{
		ChunkID:    "c1",
		SourceType: "web_ui",
		Text: "## Login Screen\n" +
			"This screen must show the login form. Required: username field, password field.\n" +
			"Visit https://example.com/login to see it.\n" +
			"button \"Sign In\"\n",
	}}

	screens := ExtractScreens("kw1", chunks)
	if len(screens) == 0 {
		t.Fatal("expected at least one screen extracted")
	}
	found := false
	for _, s := range screens {
		if s.Name == "Login" {
			found = true
			if len(s.URLPatterns) == 0 {
				t.Error("expected a url pattern to be extracted")
			}
		}
	}
	if !found {
		t.Fatalf("expected a screen named 'Login', got %+v", screens)
	}
}

func TestExtractScreens_RejectsTooGenericURLPattern(t *testing.T) {
	patterns := extractURLPatterns("see .* for details")
	for _, p := range patterns {
		if p == ".*" {
			t.Fatal("expected .* to be rejected as too generic")
		}
	}
}
