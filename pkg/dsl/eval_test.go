package dsl

import (
	"testing"

	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/pkg/utils"
)

func testCandidate() *core.Candidate {
	c := core.NewCandidate(&core.Place{
		ID:          "museum",
		Name:        "Museum",
		Category:    "culture",
		Tags:        []string{"art", "history"},
		Rating:      4.5,
		BudgetLevel: 2,
	})
	c.Score = 0.8
	c.PutLabel("recall_source", utils.Label{Value: "catalog", Source: "recall.candidates"})
	return c
}

func TestEval_Evaluate(t *testing.T) {
	rctx := &core.RecommendContext{UserID: "u1", Scene: "family"}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"category equality", `place.category == "culture"`, true},
		{"rating threshold", `place.rating >= 4.0`, true},
		{"budget miss", `place.budget_level > 3`, false},
		{"tag membership", `"art" in place.tags`, true},
		{"logic and", `place.category == "culture" && place.rating > 4.0`, true},
		{"label access", `label.recall_source == "catalog"`, true},
		{"rctx scene", `rctx.scene == "family"`, true},
		{"score", `place.score > 0.5`, true},
		{"empty expr passes", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEval(testCandidate(), rctx).Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error = %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEval_CompileError(t *testing.T) {
	_, err := NewEval(testCandidate(), &core.RecommendContext{}).Evaluate(`place.category ==`)
	if err == nil {
		t.Error("Evaluate() with broken expr: want error, got nil")
	}
}

func TestEval_NonBooleanResult(t *testing.T) {
	_, err := NewEval(testCandidate(), &core.RecommendContext{}).Evaluate(`place.rating`)
	if err == nil {
		t.Error("Evaluate() returning non-boolean: want error, got nil")
	}
}
