package seed

import (
	"context"
	"fmt"
	"log/slog"

	models "lexlib/internal/domain/models/library"
	librarySvc "lexlib/internal/domain/services/library"
)

// LibrarySeeder creates a demo catalogue with one document through the service
// layer, so positions, statuses and search indexing follow the normal rules
type LibrarySeeder struct {
	catalogues librarySvc.CatalogueService
	documents  librarySvc.DocumentService
	materials  librarySvc.MaterialService
	logger     *slog.Logger
}

// NewLibrarySeeder creates a new library seeder
func NewLibrarySeeder(
	catalogues librarySvc.CatalogueService,
	documents librarySvc.DocumentService,
	materials librarySvc.MaterialService,
	logger *slog.Logger,
) *LibrarySeeder {
	return &LibrarySeeder{
		catalogues: catalogues,
		documents:  documents,
		materials:  materials,
		logger:     logger,
	}
}

// Node is one material of a seeded tree
type Node struct {
	Ref      string
	Title    string
	Type     models.MaterialType
	Status   models.Status // Empty keeps the workflow's initial status
	Body     string
	Children []Node
}

// DemoRef is the ref of the seeded document
const DemoRef = "CC-DEMO"

// DemoTree is a small civil code extract mixing statuses at several depths
func DemoTree() []Node {
	return []Node{
		{Ref: "Titre préliminaire", Title: "De la publication, des effets et de l'application des lois", Type: models.MaterialTypeDivision, Status: models.StatusValidated, Children: []Node{
			{Ref: "Art. 1", Type: models.MaterialTypeArticle, Status: models.StatusValidated,
				Body: "Les lois et, lorsqu'ils sont publiés au *Journal officiel*, les actes administratifs entrent en vigueur à la date qu'ils fixent ou, à défaut, le lendemain de leur publication."},
			{Ref: "Art. 2", Type: models.MaterialTypeArticle, Status: models.StatusValidated,
				Body: "La loi ne dispose que pour l'avenir ; elle n'a point d'effet rétroactif."},
			{Ref: "Art. 3", Type: models.MaterialTypeArticle,
				Body: "Les lois de police et de sûreté obligent tous ceux qui habitent le territoire."},
		}},
		{Ref: "Livre Ier", Title: "Des personnes", Type: models.MaterialTypeDivision, Children: []Node{
			{Ref: "Titre Ier", Title: "Des droits civils", Type: models.MaterialTypeDivision, Children: []Node{
				{Ref: "Art. 7", Type: models.MaterialTypeArticle,
					Body: "L'exercice des droits civils est indépendant de l'exercice des droits politiques."},
				{Ref: "Art. 8", Type: models.MaterialTypeArticle,
					Body: "Tout Français jouira des droits civils."},
			}},
			{Ref: "Titre Ier bis", Title: "De la nationalité française", Type: models.MaterialTypeDivision, Status: models.StatusArchived},
		}},
	}
}

// SeedDemo creates the demo catalogue, document type and document.
// Existing rows are reused; an existing demo document is left untouched.
func (s *LibrarySeeder) SeedDemo(ctx context.Context) (*models.Document, error) {
	existing, err := s.documents.ListDocuments(ctx, models.DocumentFilter{})
	if err != nil {
		return nil, fmt.Errorf("seed: list documents: %w", err)
	}
	for _, d := range existing {
		if d.Ref == DemoRef {
			s.logger.Info("demo document already seeded", "document_id", d.ID)
			return nil, nil
		}
	}

	catalogueID, err := s.ensureCatalogue(ctx, "Codes", "Codes en vigueur")
	if err != nil {
		return nil, err
	}
	docTypeID, err := s.ensureDocumentType(ctx, "Code")
	if err != nil {
		return nil, err
	}

	doc, err := s.documents.CreateDocument(ctx, &librarySvc.CreateDocumentRequest{
		Title:          "Code civil (extraits)",
		Ref:            DemoRef,
		CatalogueID:    &catalogueID,
		DocumentTypeID: &docTypeID,
		Published:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("seed document: %w", err)
	}

	count, err := s.SeedTree(ctx, doc.ID, DemoTree())
	if err != nil {
		return nil, err
	}

	s.logger.Info("demo document seeded", "document_id", doc.ID, "materials", count)
	return doc, nil
}

func (s *LibrarySeeder) ensureCatalogue(ctx context.Context, name, description string) (string, error) {
	catalogues, err := s.catalogues.ListCatalogues(ctx)
	if err != nil {
		return "", fmt.Errorf("seed: list catalogues: %w", err)
	}
	for _, c := range catalogues {
		if c.Name == name {
			return c.ID, nil
		}
	}
	c, err := s.catalogues.CreateCatalogue(ctx, &librarySvc.CreateCatalogueRequest{Name: name, Description: description})
	if err != nil {
		return "", fmt.Errorf("seed catalogue: %w", err)
	}
	return c.ID, nil
}

func (s *LibrarySeeder) ensureDocumentType(ctx context.Context, name string) (string, error) {
	types, err := s.catalogues.ListDocumentTypes(ctx)
	if err != nil {
		return "", fmt.Errorf("seed: list document types: %w", err)
	}
	for _, t := range types {
		if t.Name == name {
			return t.ID, nil
		}
	}
	t, err := s.catalogues.CreateDocumentType(ctx, &librarySvc.CreateDocumentTypeRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("seed document type: %w", err)
	}
	return t.ID, nil
}

// SeedTree creates nodes under documentID in order and moves each to its
// status. Returns the number of materials created.
func (s *LibrarySeeder) SeedTree(ctx context.Context, documentID string, nodes []Node) (int, error) {
	return s.seedLevel(ctx, documentID, nil, nodes)
}

func (s *LibrarySeeder) seedLevel(ctx context.Context, documentID string, parentID *string, nodes []Node) (int, error) {
	count := 0
	for _, n := range nodes {
		m, err := s.materials.CreateMaterial(ctx, &librarySvc.CreateMaterialRequest{
			DocumentID:   documentID,
			ParentID:     parentID,
			Ref:          n.Ref,
			Title:        n.Title,
			MaterialType: n.Type,
			Body:         n.Body,
		})
		if err != nil {
			return count, fmt.Errorf("seed material %q: %w", n.Ref, err)
		}
		count++

		if n.Status != "" && n.Status != m.Status {
			if _, err := s.materials.TransitionStatus(ctx, &librarySvc.StatusTransitionRequest{
				MaterialIDs: []string{m.ID},
				Status:      n.Status,
			}); err != nil {
				return count, fmt.Errorf("seed status of %q: %w", n.Ref, err)
			}
		}

		children, err := s.seedLevel(ctx, documentID, &m.ID, n.Children)
		count += children
		if err != nil {
			return count, err
		}
	}
	return count, nil
}
