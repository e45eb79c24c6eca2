package tripkit

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/tripkit/cache"
	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/filter"
	"github.com/rushteam/tripkit/interaction"
	"github.com/rushteam/tripkit/pkg/geo"
	"github.com/rushteam/tripkit/store"
)

// 组装一个全内存的引擎：3 个地点、u1 的画像、v1 的相似用户信号。
func testEngine(t *testing.T) *Engine {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })

	catalog := store.NewMemoryCatalog()
	catalog.AddPlace(&core.Place{
		ID: "louvre", Name: "Louvre", Category: "culture", Tags: []string{"art"},
		Rating: 4.8, BudgetLevel: 2, Location: geo.Coordinate{Lat: 48.8606, Lng: 2.3376},
		Accessibility: []string{"wheelchair"},
	})
	catalog.AddPlace(&core.Place{
		ID: "orsay", Name: "Orsay", Category: "culture", Tags: []string{"art"},
		Rating: 4.6, BudgetLevel: 2, Location: geo.Coordinate{Lat: 48.8600, Lng: 2.3266},
		Accessibility: []string{"wheelchair"},
	})
	catalog.AddPlace(&core.Place{
		ID: "calanques", Name: "Calanques", Category: "nature", Tags: []string{"sea"},
		Rating: 4.7, BudgetLevel: 1, Location: geo.Coordinate{Lat: 43.2110, Lng: 5.4430},
	})

	profiles := store.NewMemoryProfileStore()
	profiles.PutProfile(&core.UserProfile{
		UserID:      "u1",
		Preferences: map[string]float64{"category:culture": 0.9, "tag:art": 0.7},
		BudgetLevel: 2,
	})

	log := interaction.NewStoreLog(st, "itx")
	ctx := context.Background()
	seed := []*core.Interaction{
		{UserID: "u1", PlaceID: "louvre", Type: core.InteractionLike},
		{UserID: "v1", PlaceID: "louvre", Type: core.InteractionLike},
		{UserID: "v1", PlaceID: "orsay", Type: core.InteractionSave},
	}
	for _, rec := range seed {
		if err := log.Record(ctx, rec); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	coordinator := cache.NewCoordinator(st, st)
	coordinator.Freshness = time.Minute
	coordinator.PollInterval = 10 * time.Millisecond

	return &Engine{
		Catalog:      catalog,
		Profiles:     profiles,
		Interactions: interaction.NewIndex(log),
		Recorder:     log,
		Cache:        coordinator,
	}
}

func TestEngine_GetRecommendations(t *testing.T) {
	e := testEngine(t)
	got, err := e.GetRecommendations(context.Background(), "u1", 10, "")
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}

	// louvre 已交互，必须被过滤；orsay 有协同+内容双信号，应排第一
	for _, sp := range got {
		if sp.PlaceID == "louvre" {
			t.Error("louvre already interacted, must be filtered")
		}
	}
	if len(got) == 0 || got[0].PlaceID != "orsay" {
		t.Fatalf("top recommendation = %v, want orsay first", got)
	}
	if got[0].Rank != 1 {
		t.Errorf("top rank = %d, want 1", got[0].Rank)
	}
	if got[0].Score <= 0 {
		t.Errorf("top score = %v, want > 0", got[0].Score)
	}
}

func TestEngine_CacheHitSkipsRecompute(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	if _, err := e.GetRecommendations(ctx, "u1", 10, ""); err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if e.Cache.Recomputations() != 1 {
		t.Fatalf("recomputations = %d, want 1", e.Cache.Recomputations())
	}

	if _, err := e.GetRecommendations(ctx, "u1", 10, ""); err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if e.Cache.Recomputations() != 1 {
		t.Errorf("recomputations = %d, want 1 (second call hits cache)", e.Cache.Recomputations())
	}
}

func TestEngine_QueryBypassesCache(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	if _, err := e.GetRecommendations(ctx, "u1", 10, "art museums"); err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	// 带 query 的请求不经过缓存协调器
	if e.Cache.Recomputations() != 0 {
		t.Errorf("recomputations = %d, want 0 for query request", e.Cache.Recomputations())
	}
}

func TestEngine_EmptyUserIDIsInvalid(t *testing.T) {
	e := testEngine(t)
	_, err := e.GetRecommendations(context.Background(), "", 10, "")
	if !core.IsInvalidInput(err) {
		t.Errorf("GetRecommendations(\"\") error = %v, want INVALID_INPUT", err)
	}
}

func TestEngine_RecordInteractionInvalidatesCache(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	if _, err := e.GetRecommendations(ctx, "u1", 10, ""); err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}

	err := e.RecordInteraction(ctx, &core.Interaction{
		UserID: "u1", PlaceID: "orsay", Type: core.InteractionView, Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}

	// 缓存已失效：下一次请求触发重算，且 orsay 被过滤
	got, err := e.GetRecommendations(ctx, "u1", 10, "")
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if e.Cache.Recomputations() != 2 {
		t.Errorf("recomputations = %d, want 2 after invalidation", e.Cache.Recomputations())
	}
	for _, sp := range got {
		if sp.PlaceID == "orsay" {
			t.Error("orsay just viewed, must be filtered after recompute")
		}
	}
}

func TestEngine_ExtraFilters(t *testing.T) {
	e := testEngine(t)
	e.Cache = nil
	e.ExtraFilters = []filter.Filter{filter.NewRuleFilter(`place.category == "nature"`)}

	got, err := e.GetRecommendations(context.Background(), "u1", 10, "")
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	for _, sp := range got {
		if sp.PlaceID == "calanques" {
			t.Error("rule filter must drop nature places")
		}
	}
}

func TestEngine_GetRoadmap(t *testing.T) {
	e := testEngine(t)
	got, err := e.GetRoadmap(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("GetRoadmap() error = %v", err)
	}
	if len(got.Places) == 0 {
		t.Fatal("roadmap is empty")
	}
	if got.UserID != "u1" {
		t.Errorf("roadmap user = %s, want u1", got.UserID)
	}

	var sum float64
	for _, seg := range got.Segments {
		sum += seg.DistanceKm
	}
	if sum != got.TotalKm {
		t.Errorf("TotalKm = %v, segment sum = %v", got.TotalKm, sum)
	}
}

func TestEngine_GetRoadmap_ExplicitPlaces(t *testing.T) {
	e := testEngine(t)
	got, err := e.GetRoadmap(context.Background(), "u1", &core.RoadmapConstraints{
		PlaceIDs: []string{"louvre", "calanques"},
	})
	if err != nil {
		t.Fatalf("GetRoadmap() error = %v", err)
	}
	if len(got.Places) != 2 {
		t.Fatalf("got %d places, want 2", len(got.Places))
	}
	// 巴黎—马赛单段，约 660km
	if got.TotalKm < 600 || got.TotalKm > 700 {
		t.Errorf("TotalKm = %v, want ~660", got.TotalKm)
	}
}
