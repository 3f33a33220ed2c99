package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	models "lexlib/internal/domain/models/library"
)

const idxMaterials = "lexlib_materials"

// Meili implements Engine via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	logger  *slog.Logger
	healthy atomic.Bool
	done    chan struct{}

	onRecover atomic.Pointer[func()]
}

// NewMeili creates a Meilisearch client and configures the material index.
// An unreachable server is not an error: the health loop picks it up later.
func NewMeili(url, apiKey string, logger *slog.Logger) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		logger: logger,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		logger.Warn("meilisearch unavailable", "url", url, "error", err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxMaterials,
		PrimaryKey: "id",
	}); err != nil {
		m.logger.Debug("create index (may already exist)", "index", idxMaterials, "error", err)
	}

	index := m.client.Index(idxMaterials)
	filterable := []interface{}{"documentId", "published", "status"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.logger.Warn("update filterable attributes", "index", idxMaterials, "error", err)
	}
	searchable := []string{"ref", "title", "body"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.logger.Warn("update searchable attributes", "index", idxMaterials, "error", err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.checkHealth()
		}
	}
}

// checkHealth updates the health flag. On recovery the index is reconfigured and
// the recovery hook runs, since writes skipped during the outage are missing.
func (m *Meili) checkHealth() {
	_, err := m.client.Health()
	wasHealthy := m.healthy.Swap(err == nil)
	if err != nil || wasHealthy {
		return
	}

	m.logger.Info("meilisearch recovered, reconfiguring index")
	m.configureIndex()
	if fn := m.onRecover.Load(); fn != nil {
		(*fn)()
	}
}

// OnRecover registers fn to run, on the health loop goroutine, each time
// Meilisearch becomes reachable again
func (m *Meili) OnRecover(fn func()) {
	m.onRecover.Store(&fn)
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries the material index
func (m *Meili) Search(ctx context.Context, opts *models.SearchOptions) (*models.SearchResults, error) {
	if !m.healthy.Load() {
		return nil, fmt.Errorf("meilisearch unhealthy")
	}

	req := &meili.SearchRequest{
		Limit:                 int64(opts.Limit),
		Offset:                int64(opts.Offset),
		AttributesToHighlight: []string{"ref", "title"},
		AttributesToCrop:      []string{"body"},
		CropLength:            30,
		HighlightPreTag:       "<mark>",
		HighlightPostTag:      "</mark>",
		ShowRankingScore:      true,
	}
	if filters := searchFilters(opts); len(filters) > 0 {
		req.Filter = filters
	}

	resp, err := m.client.Index(idxMaterials).SearchWithContext(ctx, opts.Query, req)
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	results := make([]models.SearchResult, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		results = append(results, hitToResult(hit))
	}

	return models.NewSearchResults(results, int(resp.EstimatedTotalHits), opts, EngineMeilisearch), nil
}

// searchFilters translates search options into Meilisearch filter expressions
func searchFilters(opts *models.SearchOptions) []string {
	var filters []string
	if opts.DocumentID != "" {
		filters = append(filters, fmt.Sprintf("documentId = %q", opts.DocumentID))
	}
	if opts.PublishedOnly {
		filters = append(filters, "published = true")
	}
	return filters
}

func hitToResult(hit meili.Hit) models.SearchResult {
	return models.SearchResult{
		MaterialID: decodeString(hit, "id"),
		DocumentID: decodeString(hit, "documentId"),
		Ref:        firstNonBlank(decodeFormattedString(hit, "ref"), decodeString(hit, "ref")),
		Title:      firstNonBlank(decodeFormattedString(hit, "title"), decodeString(hit, "title")),
		Snippet:    firstNonBlank(decodeFormattedString(hit, "body"), decodeString(hit, "body")),
		Score:      decodeFloat(hit, "_rankingScore"),
	}
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFloat(hit meili.Hit, key string) float64 {
	raw, ok := hit[key]
	if !ok {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	return 0
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]interface{}
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	s, _ := formatted[key].(string)
	return strings.TrimSpace(s)
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// IndexMaterials adds or updates materials in the index
func (m *Meili) IndexMaterials(records []MaterialRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := m.client.Index(idxMaterials).AddDocuments(records, nil)
	return err
}

// DeleteMaterials removes materials from the index
func (m *Meili) DeleteMaterials(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := m.client.Index(idxMaterials).DeleteDocuments(ids, nil)
	return err
}

// ClearMaterials removes every document from the material index. Meilisearch
// applies index tasks in order, so records added afterwards survive.
func (m *Meili) ClearMaterials(ctx context.Context) error {
	_, err := m.client.Index(idxMaterials).DeleteAllDocumentsWithContext(ctx, nil)
	return err
}
