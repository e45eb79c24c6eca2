package interaction

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/tripkit/core"
)

// memLog is an in-memory Log for tests.
type memLog struct {
	records map[string][]*core.Interaction
}

func newMemLog() *memLog {
	return &memLog{records: make(map[string][]*core.Interaction)}
}

func (l *memLog) add(userID, placeID string, t core.InteractionType) {
	l.records[userID] = append(l.records[userID], &core.Interaction{
		UserID:    userID,
		PlaceID:   placeID,
		Type:      t,
		Timestamp: time.Now(),
	})
}

func (l *memLog) GetUserInteractions(_ context.Context, userID string) ([]*core.Interaction, error) {
	return l.records[userID], nil
}

func (l *memLog) GetAllUsers(_ context.Context) ([]string, error) {
	users := make([]string, 0, len(l.records))
	for u := range l.records {
		users = append(users, u)
	}
	return users, nil
}

func TestIndex_Vector_TypeWeights(t *testing.T) {
	log := newMemLog()
	log.add("u1", "p1", core.InteractionView)
	log.add("u1", "p1", core.InteractionLike)
	log.add("u1", "p2", core.InteractionSave)

	idx := NewIndex(log)
	vec, err := idx.Vector(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Vector() error = %v", err)
	}

	if got, want := vec["p1"], 1.0+3.0; got != want {
		t.Errorf("vec[p1] = %v, want %v", got, want)
	}
	if got, want := vec["p2"], 5.0; got != want {
		t.Errorf("vec[p2] = %v, want %v", got, want)
	}
}

func TestIndex_Vector_ExplicitWeightOverride(t *testing.T) {
	log := newMemLog()
	log.records["u1"] = []*core.Interaction{
		{UserID: "u1", PlaceID: "p1", Type: core.InteractionView, Weight: 7},
	}

	idx := NewIndex(log)
	vec, err := idx.Vector(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Vector() error = %v", err)
	}
	if vec["p1"] != 7 {
		t.Errorf("vec[p1] = %v, want 7", vec["p1"])
	}
}

func TestIndex_Vector_NoInteractions(t *testing.T) {
	idx := NewIndex(newMemLog())
	vec, err := idx.Vector(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Vector() error = %v", err)
	}
	if len(vec) != 0 {
		t.Errorf("Vector() = %v, want empty", vec)
	}
}

func TestIndex_SimilarUsers_Scenario(t *testing.T) {
	// U 喜欢 {X, Y}；V 喜欢 {X, Z} → sim(U, V) = 0.5 > 0.1
	log := newMemLog()
	log.add("U", "X", core.InteractionLike)
	log.add("U", "Y", core.InteractionLike)
	log.add("V", "X", core.InteractionLike)
	log.add("V", "Z", core.InteractionLike)

	idx := NewIndex(log)
	results, err := idx.SimilarUsers(context.Background(), "U", 0.1, 10)
	if err != nil {
		t.Fatalf("SimilarUsers() error = %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("SimilarUsers() returned %d results, want 1", len(results))
	}
	if results[0].UserID != "V" {
		t.Errorf("similar user = %s, want V", results[0].UserID)
	}
	if results[0].Score <= 0 {
		t.Errorf("similarity = %v, want > 0", results[0].Score)
	}
	if results[0].Rank != 1 {
		t.Errorf("rank = %d, want 1", results[0].Rank)
	}
}

func TestIndex_SimilarUsers_ExcludesSelf(t *testing.T) {
	log := newMemLog()
	log.add("U", "X", core.InteractionLike)
	log.add("V", "X", core.InteractionLike)

	idx := NewIndex(log)
	results, err := idx.SimilarUsers(context.Background(), "U", 0, 10)
	if err != nil {
		t.Fatalf("SimilarUsers() error = %v", err)
	}
	for _, r := range results {
		if r.UserID == "U" {
			t.Errorf("results include the querying user")
		}
	}
}

func TestIndex_SimilarUsers_MinSimilarityFloor(t *testing.T) {
	// W 与 U 没有共同地点，相似度 0，必须被硬下限过滤
	log := newMemLog()
	log.add("U", "X", core.InteractionLike)
	log.add("W", "Q", core.InteractionLike)

	idx := NewIndex(log)
	results, err := idx.SimilarUsers(context.Background(), "U", 0.1, 10)
	if err != nil {
		t.Fatalf("SimilarUsers() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("SimilarUsers() = %v, want empty (below floor)", results)
	}
}

func TestIndex_SimilarUsers_DeterministicTieBreak(t *testing.T) {
	// b 与 c 的向量与 U 完全相同 → 相似度并列，按用户 ID 升序
	log := newMemLog()
	log.add("U", "X", core.InteractionLike)
	log.add("c", "X", core.InteractionLike)
	log.add("b", "X", core.InteractionLike)

	idx := NewIndex(log)
	results, err := idx.SimilarUsers(context.Background(), "U", 0, 10)
	if err != nil {
		t.Fatalf("SimilarUsers() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].UserID != "b" || results[1].UserID != "c" {
		t.Errorf("tie-break order = [%s, %s], want [b, c]", results[0].UserID, results[1].UserID)
	}
}

func TestIndex_SimilarUsers_MaxResults(t *testing.T) {
	log := newMemLog()
	log.add("U", "X", core.InteractionLike)
	for _, u := range []string{"a", "b", "c", "d"} {
		log.add(u, "X", core.InteractionLike)
	}

	idx := NewIndex(log)
	results, err := idx.SimilarUsers(context.Background(), "U", 0, 2)
	if err != nil {
		t.Fatalf("SimilarUsers() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}
