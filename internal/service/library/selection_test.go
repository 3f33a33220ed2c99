package library

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"lexlib/internal/domain"
	models "lexlib/internal/domain/models/library"
	"lexlib/internal/domain/repositories"
	"lexlib/internal/repository/memory"
)

func newSelectionFixture(t *testing.T) (*fixture, *memory.SelectionStore, *selectionService) {
	t.Helper()
	f := newFixture(t)
	f.addDocument(t, "doc")
	f.addMaterial(t, "doc", "T1", "doc", 1, models.MaterialTypeDivision, models.StatusInProgress)
	f.addMaterial(t, "doc", "a1", "T1", 1, models.MaterialTypeArticle, models.StatusInProgress)
	f.addMaterial(t, "doc", "a2", "T1", 2, models.MaterialTypeArticle, models.StatusValidated)
	f.addMaterial(t, "doc", "T2", "doc", 2, models.MaterialTypeDivision, models.StatusInProgress)
	f.addMaterial(t, "doc", "b1", "T2", 1, models.MaterialTypeArticle, models.StatusInProgress)

	store := memory.NewSelectionStore(time.Hour)
	svc := NewSelectionService(store, f.cache, f.materialService(t), f.logger).(*selectionService)
	return f, store, svc
}

func TestSelectionService_Toggle(t *testing.T) {
	_, _, svc := newSelectionFixture(t)
	ctx := context.Background()
	key := repositories.SelectionKey{UserID: "u1", DocumentID: "doc", Status: models.StatusInProgress}

	steps := []struct {
		id           string
		wantSelected bool
		want         []string
	}{
		// Siblings are resolved on the full tree, so a2 comes along even though it is validated
		{id: "a1", wantSelected: true, want: []string{"T1", "a1", "a2"}},
		{id: "T2", wantSelected: true, want: []string{"T1", "T2", "a1", "a2", "b1"}},
		{id: "a2", wantSelected: false, want: []string{"T2", "b1"}},
		{id: "ghost", wantSelected: false, want: []string{"T2", "b1"}},
		{id: "T2", wantSelected: false, want: []string{}},
	}

	for _, step := range steps {
		view, err := svc.Toggle(ctx, key, step.id)
		if err != nil {
			t.Fatalf("Toggle(%s): %v", step.id, err)
		}
		if *view.Selected != step.wantSelected {
			t.Errorf("Toggle(%s) selected = %v, want %v", step.id, *view.Selected, step.wantSelected)
		}
		if diff := cmp.Diff(step.want, view.MaterialIDs); diff != "" {
			t.Errorf("after Toggle(%s) (-want +got):\n%s", step.id, diff)
		}

		stored, err := svc.GetSelection(ctx, key)
		if err != nil {
			t.Fatalf("GetSelection: %v", err)
		}
		if diff := cmp.Diff(step.want, stored.MaterialIDs); diff != "" {
			t.Errorf("stored after Toggle(%s) (-want +got):\n%s", step.id, diff)
		}
	}
}

func TestSelectionService_SelectionsAreScopedByStatusAndUser(t *testing.T) {
	_, _, svc := newSelectionFixture(t)
	ctx := context.Background()
	inProgress := repositories.SelectionKey{UserID: "u1", DocumentID: "doc", Status: models.StatusInProgress}

	if _, err := svc.Toggle(ctx, inProgress, "T2"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	for _, key := range []repositories.SelectionKey{
		{UserID: "u1", DocumentID: "doc", Status: models.StatusValidated},
		{UserID: "u2", DocumentID: "doc", Status: models.StatusInProgress},
	} {
		view, err := svc.GetSelection(ctx, key)
		if err != nil {
			t.Fatalf("GetSelection: %v", err)
		}
		if len(view.MaterialIDs) != 0 {
			t.Errorf("%+v sees %v", key, view.MaterialIDs)
		}
	}
}

func TestSelectionService_ApplyStatus(t *testing.T) {
	f, store, svc := newSelectionFixture(t)
	ctx := context.Background()
	key := repositories.SelectionKey{UserID: "u1", DocumentID: "doc", Status: models.StatusInProgress}

	if _, err := svc.Toggle(ctx, key, "T2"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	updated, err := svc.ApplyStatus(ctx, key, models.StatusValidated)
	if err != nil {
		t.Fatalf("ApplyStatus: %v", err)
	}
	if len(updated) != 2 {
		t.Errorf("updated %d materials, want 2", len(updated))
	}
	for _, id := range []string{"T2", "b1"} {
		m, _ := f.materials.GetByID(ctx, id)
		if m.Status != models.StatusValidated {
			t.Errorf("%s status = %q", id, m.Status)
		}
	}

	left, _ := store.Load(ctx, key)
	if len(left) != 0 {
		t.Errorf("selection not cleared: %v", left)
	}

	if _, err := svc.ApplyStatus(ctx, key, models.StatusValidated); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty selection: expected ErrValidation, got %v", err)
	}
}

func TestSelectionService_FailedTransitionKeepsSelection(t *testing.T) {
	f, store, svc := newSelectionFixture(t)
	ctx := context.Background()
	f.addMaterial(t, "doc", "X", "doc", 3, models.MaterialTypeArticle, models.StatusArchived)
	key := repositories.SelectionKey{UserID: "u1", DocumentID: "doc", Status: models.StatusArchived}

	if _, err := svc.Toggle(ctx, key, "X"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	_, err := svc.ApplyStatus(ctx, key, models.StatusValidated)
	var transitionErr *domain.TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}

	left, _ := store.Load(ctx, key)
	if diff := cmp.Diff([]string{"X"}, left); diff != "" {
		t.Errorf("selection after failure (-want +got):\n%s", diff)
	}
}

func TestSelectionService_DropsDeletedMaterials(t *testing.T) {
	f, store, svc := newSelectionFixture(t)
	ctx := context.Background()
	key := repositories.SelectionKey{UserID: "u1", DocumentID: "doc", Status: models.StatusInProgress}

	if _, err := svc.Toggle(ctx, key, "a1"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if err := f.materialService(t).DeleteMaterial(ctx, "a2"); err != nil {
		t.Fatalf("DeleteMaterial: %v", err)
	}

	view, err := svc.GetSelection(ctx, key)
	if err != nil {
		t.Fatalf("GetSelection: %v", err)
	}
	if diff := cmp.Diff([]string{"T1", "a1"}, view.MaterialIDs); diff != "" {
		t.Errorf("selection after delete (-want +got):\n%s", diff)
	}

	updated, err := svc.ApplyStatus(ctx, key, models.StatusValidated)
	if err != nil {
		t.Fatalf("ApplyStatus with a deleted member: %v", err)
	}
	if len(updated) != 2 {
		t.Errorf("updated %d materials, want 2", len(updated))
	}
	if left, _ := store.Load(ctx, key); len(left) != 0 {
		t.Errorf("selection not cleared: %v", left)
	}
}

func TestSelectionService_ConcurrentTogglesKeepBoth(t *testing.T) {
	_, store, svc := newSelectionFixture(t)
	ctx := context.Background()
	key := repositories.SelectionKey{UserID: "u1", DocumentID: "doc", Status: models.StatusInProgress}

	var wg sync.WaitGroup
	for _, id := range []string{"T1", "T2"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Toggle(ctx, key, id); err != nil {
				t.Errorf("Toggle(%s): %v", id, err)
			}
		}()
	}
	wg.Wait()

	got, _ := store.Load(ctx, key)
	if diff := cmp.Diff([]string{"T1", "T2", "a1", "a2", "b1"}, got); diff != "" {
		t.Errorf("selection after concurrent toggles (-want +got):\n%s", diff)
	}
}

func TestSelectionService_ValidatesKey(t *testing.T) {
	_, _, svc := newSelectionFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		key  repositories.SelectionKey
		want error
	}{
		{name: "anonymous", key: repositories.SelectionKey{DocumentID: "doc", Status: models.StatusInProgress}, want: domain.ErrUnauthorized},
		{name: "no document", key: repositories.SelectionKey{UserID: "u1", Status: models.StatusInProgress}, want: domain.ErrValidation},
		{name: "unknown status", key: repositories.SelectionKey{UserID: "u1", DocumentID: "doc", Status: "draft"}, want: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Toggle(ctx, tt.key, "a1"); !errors.Is(err, tt.want) {
				t.Errorf("Toggle: expected %v, got %v", tt.want, err)
			}
			if err := svc.ClearSelection(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("ClearSelection: expected %v, got %v", tt.want, err)
			}
		})
	}
}
