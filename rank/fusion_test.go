package rank

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/interaction"
	"github.com/rushteam/tripkit/store"
)

type fakeEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vectors[text], nil
}

func (e *fakeEmbedder) Close() error { return nil }

func seedLog(t *testing.T) *interaction.StoreLog {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })
	log := interaction.NewStoreLog(st, "itx")
	ctx := context.Background()

	// u1 和 v1 同样喜欢 p1；v1 还重度喜欢 p2
	records := []*core.Interaction{
		{UserID: "u1", PlaceID: "p1", Type: core.InteractionLike},
		{UserID: "v1", PlaceID: "p1", Type: core.InteractionLike},
		{UserID: "v1", PlaceID: "p2", Type: core.InteractionSave},
	}
	for _, r := range records {
		if err := log.Record(ctx, r); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	return log
}

func cands(places ...*core.Place) []*core.Candidate {
	out := make([]*core.Candidate, 0, len(places))
	for _, p := range places {
		out = append(out, core.NewCandidate(p))
	}
	return out
}

func TestFusionNode_CollaborativeSignal(t *testing.T) {
	node := &FusionNode{Index: interaction.NewIndex(seedLog(t))}
	rctx := &core.RecommendContext{UserID: "u1"}

	got, err := node.Process(context.Background(), rctx,
		cands(&core.Place{ID: "p2"}, &core.Place{ID: "p9"}))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var p2, p9 *core.Candidate
	for _, c := range got {
		switch c.Place.ID {
		case "p2":
			p2 = c
		case "p9":
			p9 = c
		}
	}
	if !p2.CollaborativeOK || !p9.CollaborativeOK {
		t.Fatal("collaborative signal must be available when neighbors exist")
	}
	if p2.Collaborative != 1 {
		t.Errorf("p2 collaborative = %v, want 1 (max-normalized)", p2.Collaborative)
	}
	if p9.Collaborative != 0 {
		t.Errorf("p9 collaborative = %v, want 0 (no neighbor interest)", p9.Collaborative)
	}
	if got[0].Place.ID != "p2" {
		t.Errorf("top candidate = %s, want p2", got[0].Place.ID)
	}
}

func TestFusionNode_ColdStartRedistribution(t *testing.T) {
	// 无交互用户：协同信号缺失，内容信号承接全部权重
	node := &FusionNode{Index: interaction.NewIndex(seedLog(t))}
	rctx := &core.RecommendContext{
		UserID: "ghost",
		User: &core.UserProfile{
			UserID:      "ghost",
			Preferences: map[string]float64{"category:culture": 1},
		},
	}

	got, err := node.Process(context.Background(), rctx,
		cands(&core.Place{ID: "m", Category: "culture"}))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	c := got[0]
	if c.CollaborativeOK {
		t.Error("collaborative must be unavailable for cold-start user")
	}
	if !c.ContentOK {
		t.Fatal("content signal must be available")
	}
	// 内容相似度为 1（完全匹配），且再分配后承接全部权重 → 融合分 = 1
	if math.Abs(c.Score-1) > 1e-9 {
		t.Errorf("fused score = %v, want 1 (full weight on content)", c.Score)
	}
}

func TestFusionNode_SemanticSignal(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float64{
		"sea and sun": {1, 0},
	}}
	node := &FusionNode{Embedder: emb}
	rctx := &core.RecommendContext{UserID: "u1", Query: "sea and sun"}

	got, err := node.Process(context.Background(), rctx, cands(
		&core.Place{ID: "beach", Embedding: []float64{1, 0}},
		&core.Place{ID: "cave", Embedding: []float64{0, 1}},
		&core.Place{ID: "unknown"},
	))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	byID := map[string]*core.Candidate{}
	for _, c := range got {
		byID[c.Place.ID] = c
	}
	if !byID["beach"].SemanticOK || byID["beach"].Semantic != 1 {
		t.Errorf("beach semantic = (%v, %v), want (1, true)", byID["beach"].Semantic, byID["beach"].SemanticOK)
	}
	if byID["cave"].Semantic != 0 {
		t.Errorf("cave semantic = %v, want 0 (orthogonal)", byID["cave"].Semantic)
	}
	if byID["unknown"].SemanticOK {
		t.Error("place without embedding must have semantic unavailable")
	}
	if got[0].Place.ID != "beach" {
		t.Errorf("top candidate = %s, want beach", got[0].Place.ID)
	}
}

func TestFusionNode_EmbedFailureDegrades(t *testing.T) {
	node := &FusionNode{
		Embedder: &fakeEmbedder{err: core.ErrEmbedUnavailable},
	}
	rctx := &core.RecommendContext{
		UserID: "u1",
		Query:  "anything",
		User: &core.UserProfile{
			UserID:      "u1",
			Preferences: map[string]float64{"category:culture": 1},
		},
	}

	got, err := node.Process(context.Background(), rctx,
		cands(&core.Place{ID: "m", Category: "culture"}))
	if err != nil {
		t.Fatalf("Process() error = %v, want graceful degradation", err)
	}
	if got[0].SemanticOK {
		t.Error("semantic must be unavailable after embed failure")
	}
	if !got[0].ContentOK || got[0].Score == 0 {
		t.Error("remaining signals must still produce a score")
	}
}

func TestFusionNode_AllSignalsMissing(t *testing.T) {
	node := &FusionNode{}
	got, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"},
		cands(&core.Place{ID: "a", Rating: 3}, &core.Place{ID: "b", Rating: 5}))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	for _, c := range got {
		if c.Score != 0 {
			t.Errorf("%s score = %v, want 0 with no signals", c.Place.ID, c.Score)
		}
	}
	// 融合分并列：按评分降序
	if got[0].Place.ID != "b" {
		t.Errorf("tie-break by rating: top = %s, want b", got[0].Place.ID)
	}
}

func TestFusionNode_DeterministicOrder(t *testing.T) {
	// 分数和评分都并列：按 ID 升序
	node := &FusionNode{}
	got, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"},
		cands(&core.Place{ID: "z", Rating: 4}, &core.Place{ID: "a", Rating: 4}))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got[0].Place.ID != "a" || got[1].Place.ID != "z" {
		t.Errorf("order = [%s, %s], want [a, z]", got[0].Place.ID, got[1].Place.ID)
	}
	if got[0].Rank != 1 || got[1].Rank != 2 {
		t.Errorf("ranks = [%d, %d], want [1, 2]", got[0].Rank, got[1].Rank)
	}
}

func TestFusionNode_PureScoring(t *testing.T) {
	// 打分不得修改画像
	log := seedLog(t)
	node := &FusionNode{Index: interaction.NewIndex(log)}
	profile := &core.UserProfile{
		UserID:      "u1",
		Preferences: map[string]float64{"category:culture": 0.8},
	}
	rctx := &core.RecommendContext{UserID: "u1", User: profile}

	if _, err := node.Process(context.Background(), rctx,
		cands(&core.Place{ID: "p2", Category: "culture"})); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(profile.Preferences) != 1 || profile.Preferences["category:culture"] != 0.8 {
		t.Errorf("scoring mutated the profile: %v", profile.Preferences)
	}
}
