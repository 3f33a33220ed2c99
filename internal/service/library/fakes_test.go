package library

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"lexlib/internal/domain"
	models "lexlib/internal/domain/models/library"
	"lexlib/internal/domain/repositories"
	"lexlib/internal/materialtree"
	"lexlib/internal/render"
	"lexlib/internal/workflow"
)

// fakeMaterialRepo keeps rows in insertion order, which stands in for the
// created_at tie-break of the real query
type fakeMaterialRepo struct {
	mu        sync.Mutex
	rows      []*models.Material
	listCalls int
	failNext  error
}

func (r *fakeMaterialRepo) find(id string) (int, *models.Material) {
	for i, m := range r.rows {
		if m.ID == id {
			return i, m
		}
	}
	return -1, nil
}

func (r *fakeMaterialRepo) Create(_ context.Context, material *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	if material.Position == nil {
		next := 1
		for _, m := range r.rows {
			if m.DocumentID == material.DocumentID && m.ParentID == material.ParentID && m.Position != nil && *m.Position >= next {
				next = *m.Position + 1
			}
		}
		material.Position = &next
	}
	stored := *material
	r.rows = append(r.rows, &stored)
	return nil
}

func (r *fakeMaterialRepo) GetByID(_ context.Context, id string) (*models.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, m := r.find(id)
	if m == nil {
		return nil, fmt.Errorf("material %s: %w", id, domain.ErrNotFound)
	}
	out := *m
	return &out, nil
}

func (r *fakeMaterialRepo) Update(_ context.Context, material *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, m := r.find(material.ID)
	if m == nil {
		return fmt.Errorf("material %s: %w", material.ID, domain.ErrNotFound)
	}
	*m = *material
	return nil
}

func (r *fakeMaterialRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, m := r.find(id)
	if m == nil {
		return fmt.Errorf("material %s: %w", id, domain.ErrNotFound)
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	return nil
}

func (r *fakeMaterialRepo) ListByDocument(_ context.Context, documentID string) ([]models.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if err := r.failNext; err != nil {
		r.failNext = nil
		return nil, err
	}
	var out []models.Material
	for _, m := range r.rows {
		if m.DocumentID == documentID {
			row := *m
			row.ChildrenCount = r.childCount(m.ID)
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeMaterialRepo) childCount(id string) int {
	n := 0
	for _, m := range r.rows {
		if m.ParentID == id {
			n++
		}
	}
	return n
}

func (r *fakeMaterialRepo) ListChildren(ctx context.Context, documentID, parentID string) ([]models.Material, error) {
	all, err := r.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	var out []models.Material
	for _, m := range all {
		if m.ParentID == parentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMaterialRepo) UpdatePositions(_ context.Context, updates []materialtree.PositionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range updates {
		_, m := r.find(u.ID)
		if m == nil {
			return fmt.Errorf("material %s: %w", u.ID, domain.ErrNotFound)
		}
		pos := u.Position
		m.Position = &pos
	}
	return nil
}

func (r *fakeMaterialRepo) UpdateStatus(_ context.Context, ids []string, status models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if _, m := r.find(id); m != nil {
			m.Status = status
		}
	}
	return nil
}

func (r *fakeMaterialRepo) ListByIDs(_ context.Context, ids []string) ([]models.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Material
	for _, id := range ids {
		if _, m := r.find(id); m != nil {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMaterialRepo) Search(_ context.Context, opts *models.SearchOptions) (*models.SearchResults, error) {
	return models.NewSearchResults(nil, 0, opts, "fake"), nil
}

// position returns the stored position of id, or 0 when it has none
func (r *fakeMaterialRepo) position(t *testing.T, id string) int {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	_, m := r.find(id)
	if m == nil {
		t.Fatalf("material %s not stored", id)
	}
	if m.Position == nil {
		return 0
	}
	return *m.Position
}

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]*models.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*models.Document)}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	for _, existing := range r.docs {
		if existing.Ref == doc.Ref {
			return &domain.ConflictError{Message: "document ref already exists", ResourceType: "document", ResourceID: existing.ID}
		}
	}
	stored := *doc
	r.docs[doc.ID] = &stored
	return nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	out := *doc
	return &out, nil
}

func (r *fakeDocumentRepo) Update(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	stored := *doc
	r.docs[doc.ID] = &stored
	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepo) List(_ context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Document
	for _, doc := range r.docs {
		if filter.Published != nil && doc.Published != *filter.Published {
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

type fakeCatalogueRepo struct {
	mu         sync.Mutex
	catalogues map[string]*models.Catalogue
}

func newFakeCatalogueRepo() *fakeCatalogueRepo {
	return &fakeCatalogueRepo{catalogues: make(map[string]*models.Catalogue)}
}

func (r *fakeCatalogueRepo) Create(_ context.Context, c *models.Catalogue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.NewString()
	stored := *c
	r.catalogues[c.ID] = &stored
	return nil
}

func (r *fakeCatalogueRepo) GetByID(_ context.Context, id string) (*models.Catalogue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.catalogues[id]
	if !ok {
		return nil, fmt.Errorf("catalogue %s: %w", id, domain.ErrNotFound)
	}
	out := *c
	return &out, nil
}

func (r *fakeCatalogueRepo) Update(_ context.Context, c *models.Catalogue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *c
	r.catalogues[c.ID] = &stored
	return nil
}

func (r *fakeCatalogueRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.catalogues[id]; !ok {
		return fmt.Errorf("catalogue %s: %w", id, domain.ErrNotFound)
	}
	delete(r.catalogues, id)
	return nil
}

func (r *fakeCatalogueRepo) List(_ context.Context) ([]models.Catalogue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Catalogue
	for _, c := range r.catalogues {
		out = append(out, *c)
	}
	return out, nil
}

type fakeDocumentTypeRepo struct {
	mu    sync.Mutex
	types map[string]*models.DocumentType
}

func newFakeDocumentTypeRepo() *fakeDocumentTypeRepo {
	return &fakeDocumentTypeRepo{types: make(map[string]*models.DocumentType)}
}

func (r *fakeDocumentTypeRepo) Create(_ context.Context, dt *models.DocumentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dt.ID = uuid.NewString()
	stored := *dt
	r.types[dt.ID] = &stored
	return nil
}

func (r *fakeDocumentTypeRepo) GetByID(_ context.Context, id string) (*models.DocumentType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dt, ok := r.types[id]
	if !ok {
		return nil, fmt.Errorf("document type %s: %w", id, domain.ErrNotFound)
	}
	out := *dt
	return &out, nil
}

func (r *fakeDocumentTypeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.types, id)
	return nil
}

func (r *fakeDocumentTypeRepo) List(_ context.Context) ([]models.DocumentType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DocumentType
	for _, dt := range r.types {
		out = append(out, *dt)
	}
	return out, nil
}

type fakeAnnotationRepo struct {
	mu          sync.Mutex
	annotations map[string]*models.Annotation
}

func newFakeAnnotationRepo() *fakeAnnotationRepo {
	return &fakeAnnotationRepo{annotations: make(map[string]*models.Annotation)}
}

func (r *fakeAnnotationRepo) Create(_ context.Context, a *models.Annotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.Kind == models.AnnotationBookmark {
		for _, existing := range r.annotations {
			if existing.UserID == a.UserID && existing.MaterialID == a.MaterialID && existing.Kind == models.AnnotationBookmark {
				return &domain.ConflictError{Message: "material is already bookmarked", ResourceType: "annotation", ResourceID: existing.ID}
			}
		}
	}
	a.ID = uuid.NewString()
	stored := *a
	r.annotations[a.ID] = &stored
	return nil
}

func (r *fakeAnnotationRepo) GetByID(_ context.Context, id string) (*models.Annotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.annotations[id]
	if !ok {
		return nil, fmt.Errorf("annotation %s: %w", id, domain.ErrNotFound)
	}
	out := *a
	return &out, nil
}

func (r *fakeAnnotationRepo) Update(_ context.Context, a *models.Annotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *a
	r.annotations[a.ID] = &stored
	return nil
}

func (r *fakeAnnotationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.annotations, id)
	return nil
}

func (r *fakeAnnotationRepo) ListByUser(_ context.Context, userID string, documentID *string) ([]models.Annotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Annotation
	for _, a := range r.annotations {
		if a.UserID != userID {
			continue
		}
		if documentID != nil && a.DocumentID != *documentID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

// fakeTxManager runs fn directly and counts transactions
type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.calls++
	return fn(ctx)
}

// recordingIndexer records index calls instead of sending them to a search engine
type recordingIndexer struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
}

func (r *recordingIndexer) IndexMaterials(_ *models.Document, materials ...models.Material) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range materials {
		r.indexed = append(r.indexed, m.ID)
	}
}

func (r *recordingIndexer) DeleteMaterials(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, ids...)
}

// fixture wires every service over the in-memory fakes
type fixture struct {
	docs       *fakeDocumentRepo
	materials  *fakeMaterialRepo
	catalogues *fakeCatalogueRepo
	docTypes   *fakeDocumentTypeRepo
	tx         *fakeTxManager
	indexer    *recordingIndexer
	cache      *TreeCache
	logger     *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	f := &fixture{
		docs:       newFakeDocumentRepo(),
		materials:  &fakeMaterialRepo{},
		catalogues: newFakeCatalogueRepo(),
		docTypes:   newFakeDocumentTypeRepo(),
		tx:         &fakeTxManager{},
		indexer:    &recordingIndexer{},
		logger:     logger,
	}
	f.cache = NewTreeCache(f.docs, f.materials, logger)
	return f
}

func (f *fixture) materialService(t *testing.T) *materialService {
	t.Helper()
	registry, err := workflow.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	svc := NewMaterialService(f.materials, f.cache, registry, f.tx, render.NewRenderer(), render.NewImporter(), f.indexer, f.logger)
	return svc.(*materialService)
}

// addDocument stores a document with the given ID
func (f *fixture) addDocument(t *testing.T, id string) *models.Document {
	t.Helper()
	doc := &models.Document{ID: id, Title: "Code " + id, Ref: "REF-" + id}
	if err := f.docs.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

// addMaterial stores a material row as-is. A zero position stores NULL.
func (f *fixture) addMaterial(t *testing.T, docID, id, parentID string, position int, typ models.MaterialType, status models.Status) {
	t.Helper()
	m := &models.Material{
		ID:           id,
		DocumentID:   docID,
		ParentID:     parentID,
		Ref:          "Art. " + id,
		Title:        "Title " + id,
		MaterialType: typ,
		Status:       status,
	}
	if position > 0 {
		m.Position = &position
	} else {
		f.materials.mu.Lock()
		stored := *m
		f.materials.rows = append(f.materials.rows, &stored)
		f.materials.mu.Unlock()
		return
	}
	if err := f.materials.Create(context.Background(), m); err != nil {
		t.Fatalf("create material: %v", err)
	}
}

func statusPtr(s models.Status) *models.Status { return &s }

func strPtr(s string) *string { return &s }
