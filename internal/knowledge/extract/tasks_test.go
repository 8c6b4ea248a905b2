package extract

import (
	"testing"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
)

func TestExtractTasks_LinearSteps(t *testing.T) {
	chunks := []model.ContentChunk{{
		ChunkID: "c1",
		Text: "1. Click the login button\n" +
			"2. Type your username\n" +
			"3. Click submit\n" +
			"Inputs: username, password\n" +
			"Outputs: session_token\n",
	}}

	tasks := ExtractTasks("kw1", chunks)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if len(tasks[0].Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(tasks[0].Steps))
	}
	if tasks[0].IteratorSpec.Type != model.IteratorNone {
		t.Fatalf("expected no iterator, got %s", tasks[0].IteratorSpec.Type)
	}
}

func TestExtractTasks_BackwardReferenceRejected(t *testing.T) {
	chunks := []model.ContentChunk{{
		ChunkID: "c1",
		Text: "1. Open settings\n" +
			"2. Change password\n" +
			"3. If it fails, go back to step 1\n",
	}}
	tasks := ExtractTasks("kw1", chunks)
	if len(tasks) != 0 {
		t.Fatalf("expected backward-reference task to be rejected, got %d tasks", len(tasks))
	}
}

func TestExtractTasks_LoopBecomesIteratorNotSteps(t *testing.T) {
	chunks := []model.ContentChunk{{
		ChunkID: "c1",
		Text: "1. Open the list page\n" +
			"2. For each item in the results, delete it\n" +
			"3. Confirm the list is empty\n",
	}}
	tasks := ExtractTasks("kw1", chunks)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].IteratorSpec.Type == model.IteratorNone {
		t.Fatal("expected a detected iterator spec")
	}
}

func TestVolatilityOf(t *testing.T) {
	cases := map[string]model.Volatility{
		"password": model.VolatilityHigh,
		"session":  model.VolatilityMedium,
		"email":    model.VolatilityLow,
	}
	for name, want := range cases {
		if got := volatilityOf(name); got != want {
			t.Errorf("volatilityOf(%q) = %s, want %s", name, got, want)
		}
	}
}
