package builders

import (
	"context"
	"testing"

	"github.com/rushteam/tripkit/config"
	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/pipeline"
)

func TestRegisteredTypes(t *testing.T) {
	want := []string{"filter", "rank.fusion", "recall.candidates", "rerank.diversity", "rerank.topn"}
	got := config.SupportedTypes()

	for _, w := range want {
		found := false
		for _, g := range got {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("type %q not registered (got %v)", w, got)
		}
	}
}

func TestBuildFromConfig(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = "travel-feed"
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "filter", Config: map[string]interface{}{
			"filters": []interface{}{
				map[string]interface{}{"type": "rule", "expr": `place.budget_level > 3`},
			},
		}},
		{Type: "rank.fusion", Config: map[string]interface{}{
			"weights": map[string]interface{}{
				"collaborative": 0.5, "content": 0.3, "semantic": 0.2,
			},
		}},
		{Type: "rerank.topn", Config: map[string]interface{}{"n": 1}},
	}

	if err := config.ValidatePipelineConfig(cfg); err != nil {
		t.Fatalf("ValidatePipelineConfig() error = %v", err)
	}

	p, err := cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}

	rctx := &core.RecommendContext{
		UserID: "u1",
		User: &core.UserProfile{
			UserID:      "u1",
			Preferences: map[string]float64{"category:culture": 1},
		},
	}
	candidates := []*core.Candidate{
		core.NewCandidate(&core.Place{ID: "louvre", Category: "culture", BudgetLevel: 2}),
		core.NewCandidate(&core.Place{ID: "ritz", Category: "hotel", BudgetLevel: 4}),
		core.NewCandidate(&core.Place{ID: "beach", Category: "nature", BudgetLevel: 1}),
	}

	got, err := p.Run(context.Background(), rctx, candidates)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// ritz 被规则过滤；topn=1 只留内容匹配最高的 louvre
	if len(got) != 1 || got[0].Place.ID != "louvre" {
		t.Errorf("Run() = %v, want [louvre]", got)
	}
}

func TestValidateRejectsUnknownType(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "rank.quantum"}}

	if err := config.ValidatePipelineConfig(cfg); err == nil {
		t.Error("ValidatePipelineConfig() = nil, want error for unknown type")
	}
}

func TestBuildCandidatesNodeNeedsRuntimeDeps(t *testing.T) {
	if _, err := BuildCandidatesNode(nil); err == nil {
		t.Error("BuildCandidatesNode() = nil error, want error (requires catalog)")
	}
}
