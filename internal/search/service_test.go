package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	meili "github.com/meilisearch/meilisearch-go"

	"lexlib/internal/domain"
	models "lexlib/internal/domain/models/library"
	libraryRepo "lexlib/internal/domain/repositories/library"
)

type fakeSearcher struct {
	engine string
	err    error
	calls  int
}

func (f *fakeSearcher) Search(_ context.Context, opts *models.SearchOptions) (*models.SearchResults, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return models.NewSearchResults(nil, 0, opts, f.engine), nil
}

type fakeEngine struct {
	fakeSearcher
	healthy bool
	indexed chan []MaterialRecord
	deleted chan []string
	cleared int
}

func newFakeEngine(healthy bool) *fakeEngine {
	return &fakeEngine{
		fakeSearcher: fakeSearcher{engine: EngineMeilisearch},
		healthy:      healthy,
		indexed:      make(chan []MaterialRecord, 8),
		deleted:      make(chan []string, 8),
	}
}

func (f *fakeEngine) Healthy() bool { return f.healthy }

func (f *fakeEngine) IndexMaterials(records []MaterialRecord) error {
	f.indexed <- records
	return nil
}

func (f *fakeEngine) DeleteMaterials(ids []string) error {
	f.deleted <- ids
	return nil
}

func (f *fakeEngine) ClearMaterials(context.Context) error {
	f.cleared++
	return nil
}

var discard = slog.New(slog.DiscardHandler)

func TestService_Search(t *testing.T) {
	tests := []struct {
		name          string
		engine        func() Engine
		wantEngine    string
		wantFallbacks int
	}{
		{
			name:          "no engine configured",
			engine:        func() Engine { return nil },
			wantEngine:    EnginePostgres,
			wantFallbacks: 1,
		},
		{
			name:       "healthy engine",
			engine:     func() Engine { return newFakeEngine(true) },
			wantEngine: EngineMeilisearch,
		},
		{
			name:          "unhealthy engine",
			engine:        func() Engine { return newFakeEngine(false) },
			wantEngine:    EnginePostgres,
			wantFallbacks: 1,
		},
		{
			name: "engine error falls back",
			engine: func() Engine {
				e := newFakeEngine(true)
				e.err = errors.New("timeout")
				return e
			},
			wantEngine:    EnginePostgres,
			wantFallbacks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := &fakeSearcher{engine: EnginePostgres}
			svc := NewService(tt.engine(), fallback, discard)

			results, err := svc.Search(context.Background(), &models.SearchOptions{Query: "bail"})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if results.Engine != tt.wantEngine {
				t.Errorf("engine = %q, want %q", results.Engine, tt.wantEngine)
			}
			if fallback.calls != tt.wantFallbacks {
				t.Errorf("fallback calls = %d, want %d", fallback.calls, tt.wantFallbacks)
			}
		})
	}
}

func TestService_SearchValidation(t *testing.T) {
	svc := NewService(nil, &fakeSearcher{}, discard)

	for _, opts := range []*models.SearchOptions{
		{Query: ""},
		{Query: "bail", Limit: models.MaxSearchLimit + 1},
	} {
		if _, err := svc.Search(context.Background(), opts); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Search(%+v) error = %v, want ErrValidation", opts, err)
		}
	}
}

func TestService_IndexAndDeleteGoToEngine(t *testing.T) {
	engine := newFakeEngine(true)
	svc := NewService(engine, &fakeSearcher{}, discard)

	doc := &models.Document{ID: "d1", Published: true}
	svc.IndexMaterials(doc, models.Material{ID: "m1", DocumentID: "d1", Ref: "Art. 1", Status: models.StatusValidated})
	svc.DeleteMaterials("m2", "m3")

	select {
	case got := <-engine.indexed:
		want := []MaterialRecord{{ID: "m1", DocumentID: "d1", Ref: "Art. 1", Status: "validated", Published: true}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("indexed (-want +got):\n%s", diff)
		}
	case <-time.After(time.Second):
		t.Fatal("materials were not indexed")
	}

	select {
	case got := <-engine.deleted:
		if diff := cmp.Diff([]string{"m2", "m3"}, got); diff != "" {
			t.Errorf("deleted (-want +got):\n%s", diff)
		}
	case <-time.After(time.Second):
		t.Fatal("materials were not deleted")
	}
}

func TestService_IndexSkippedWhenUnhealthy(t *testing.T) {
	engine := newFakeEngine(false)
	svc := NewService(engine, &fakeSearcher{}, discard)

	svc.IndexMaterials(&models.Document{ID: "d1"}, models.Material{ID: "m1"})
	svc.DeleteMaterials("m1")

	select {
	case <-engine.indexed:
		t.Error("indexed while unhealthy")
	case <-engine.deleted:
		t.Error("deleted while unhealthy")
	case <-time.After(50 * time.Millisecond):
	}
}

type fakeDocuments struct {
	libraryRepo.DocumentRepository
	docs []models.Document
}

func (f *fakeDocuments) List(context.Context, models.DocumentFilter) ([]models.Document, error) {
	return f.docs, nil
}

type fakeMaterials struct {
	libraryRepo.MaterialRepository
	byDoc map[string][]models.Material
}

func (f *fakeMaterials) ListByDocument(_ context.Context, documentID string) ([]models.Material, error) {
	return f.byDoc[documentID], nil
}

func TestService_ReindexAll(t *testing.T) {
	engine := newFakeEngine(true)
	svc := NewService(engine, &fakeSearcher{}, discard)

	docs := &fakeDocuments{docs: []models.Document{{ID: "d1", Published: true}, {ID: "d2"}}}
	materials := &fakeMaterials{byDoc: map[string][]models.Material{
		"d1": {{ID: "m1", DocumentID: "d1"}, {ID: "m2", DocumentID: "d1"}},
		"d2": {{ID: "m3", DocumentID: "d2"}},
	}}

	if err := svc.ReindexAll(context.Background(), docs, materials); err != nil {
		t.Fatalf("ReindexAll: %v", err)
	}

	first, second := <-engine.indexed, <-engine.indexed
	if len(first) != 2 || !first[0].Published {
		t.Errorf("first batch = %+v", first)
	}
	if len(second) != 1 || second[0].Published {
		t.Errorf("second batch = %+v", second)
	}
}

func TestService_ResyncClearsThenReindexes(t *testing.T) {
	docs := &fakeDocuments{docs: []models.Document{{ID: "d1", Published: true}}}
	materials := &fakeMaterials{byDoc: map[string][]models.Material{
		"d1": {{ID: "m1", DocumentID: "d1"}, {ID: "m2", DocumentID: "d1"}},
	}}

	engine := newFakeEngine(true)
	svc := NewService(engine, &fakeSearcher{}, discard)

	// Updates made while the engine was down never reached it
	engine.healthy = false
	svc.IndexMaterials(&docs.docs[0], models.Material{ID: "m2", DocumentID: "d1"})
	engine.healthy = true

	if err := svc.Resync(context.Background(), docs, materials); err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if engine.cleared != 1 {
		t.Errorf("cleared = %d, want 1", engine.cleared)
	}

	batch := <-engine.indexed
	got := []string{}
	for _, r := range batch {
		got = append(got, r.ID)
	}
	if diff := cmp.Diff([]string{"m1", "m2"}, got); diff != "" {
		t.Errorf("reindexed ids (-want +got):\n%s", diff)
	}
}

func TestService_ResyncWithoutEngine(t *testing.T) {
	svc := NewService(nil, &fakeSearcher{}, discard)
	if err := svc.Resync(context.Background(), &fakeDocuments{}, &fakeMaterials{}); err != nil {
		t.Fatalf("Resync: %v", err)
	}
}

func TestSearchFilters(t *testing.T) {
	got := searchFilters(&models.SearchOptions{DocumentID: "d1", PublishedOnly: true})
	want := []string{`documentId = "d1"`, "published = true"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("filters (-want +got):\n%s", diff)
	}
	if got := searchFilters(&models.SearchOptions{}); got != nil {
		t.Errorf("filters = %v, want none", got)
	}
}

func TestHitToResult(t *testing.T) {
	hit := meili.Hit{
		"id":            json.RawMessage(`"m1"`),
		"documentId":    json.RawMessage(`"d1"`),
		"ref":           json.RawMessage(`"Art. 2"`),
		"title":         json.RawMessage(`""`),
		"body":          json.RawMessage(`"La loi ne dispose que pour l'avenir"`),
		"_rankingScore": json.RawMessage(`0.87`),
		"_formatted":    json.RawMessage(`{"ref":"<mark>Art. 2</mark>","title":"  ","body":"…ne dispose que pour l'<mark>avenir</mark>"}`),
	}

	want := models.SearchResult{
		MaterialID: "m1",
		DocumentID: "d1",
		Ref:        "<mark>Art. 2</mark>",
		Title:      "",
		Snippet:    "…ne dispose que pour l'<mark>avenir</mark>",
		Score:      0.87,
	}
	if diff := cmp.Diff(want, hitToResult(hit)); diff != "" {
		t.Errorf("hitToResult (-want +got):\n%s", diff)
	}
}
