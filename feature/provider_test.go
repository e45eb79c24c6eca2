package feature

import (
	"context"
	"testing"

	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/store"
)

func TestStoreProvider_RoundTrip(t *testing.T) {
	st := store.NewMemoryStore()
	defer st.Close()
	p := NewStoreProvider(st)
	ctx := context.Background()

	want := map[string]float64{"pref_culture": 0.8, "pref_nature": 0.2}
	if err := p.PutUserFeatures(ctx, "u1", want); err != nil {
		t.Fatalf("PutUserFeatures() error = %v", err)
	}

	got, err := p.GetUserFeatures(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserFeatures() error = %v", err)
	}
	if len(got) != 2 || got["pref_culture"] != 0.8 {
		t.Errorf("GetUserFeatures() = %v, want %v", got, want)
	}
}

func TestStoreProvider_MissingIsEmpty(t *testing.T) {
	st := store.NewMemoryStore()
	defer st.Close()
	p := NewStoreProvider(st)

	got, err := p.GetPlaceFeatures(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetPlaceFeatures() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetPlaceFeatures() = %v, want empty", got)
	}
}

type fakeProvider struct {
	users map[string]map[string]float64
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GetUserFeatures(_ context.Context, userID string) (map[string]float64, error) {
	return f.users[userID], nil
}

func (f *fakeProvider) GetPlaceFeatures(context.Context, string) (map[string]float64, error) {
	return nil, nil
}

func TestProfileAdapter(t *testing.T) {
	adapter := &ProfileAdapter{
		Provider: &fakeProvider{users: map[string]map[string]float64{
			"u1": {"pref_culture": 0.9, "budget_level": 2},
		}},
		KeyMapping: map[string]string{
			"pref_culture": "category:culture",
			"budget_level": "budget",
		},
	}

	profile, err := adapter.GetUserProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUserProfile() error = %v", err)
	}
	if profile.Preferences["category:culture"] != 0.9 {
		t.Errorf("preference = %v, want 0.9 under mapped key", profile.Preferences)
	}
	if profile.BudgetLevel != 2 {
		t.Errorf("BudgetLevel = %d, want 2", profile.BudgetLevel)
	}
}

func TestProfileAdapter_NoFeaturesIsNotFound(t *testing.T) {
	adapter := &ProfileAdapter{Provider: &fakeProvider{users: map[string]map[string]float64{}}}

	_, err := adapter.GetUserProfile(context.Background(), "ghost")
	if !core.IsNotFound(err) {
		t.Errorf("GetUserProfile() error = %v, want NOT_FOUND", err)
	}
}
