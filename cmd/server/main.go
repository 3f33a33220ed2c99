package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexlib/internal/auth"
	"lexlib/internal/config"
	"lexlib/internal/domain/repositories"
	"lexlib/internal/handler"
	"lexlib/internal/middleware"
	"lexlib/internal/render"
	"lexlib/internal/repository/memory"
	"lexlib/internal/repository/postgres"
	postgresLibrary "lexlib/internal/repository/postgres/library"
	redisRepo "lexlib/internal/repository/redis"
	"lexlib/internal/search"
	serviceLibrary "lexlib/internal/service/library"
	"lexlib/internal/workflow"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging, optionally teed into a rotated file
	var logFile io.Writer
	if cfg.LogDir != "" {
		f, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer f.Close()
		logFile = f
	}
	logger := config.NewLogger(cfg.Debug, logFile)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	catalogueRepo := postgresLibrary.NewCatalogueRepository(repoConfig)
	docTypeRepo := postgresLibrary.NewDocumentTypeRepository(repoConfig)
	docRepo := postgresLibrary.NewDocumentRepository(repoConfig)
	materialRepo := postgresLibrary.NewMaterialRepository(repoConfig)
	annotationRepo := postgresLibrary.NewAnnotationRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Selection store: redis when configured, process memory otherwise
	var selectionStore repositories.SelectionRepository
	if cfg.RedisURL != "" {
		store, err := redisRepo.NewSelectionStore(cfg.RedisURL, cfg.SelectionTTL)
		if err != nil {
			log.Fatalf("Failed to create redis selection store: %v", err)
		}
		defer store.Close()
		if err := store.Ping(ctx); err != nil {
			logger.Warn("redis unreachable at startup", "error", err)
		}
		selectionStore = store
		logger.Info("selection store: redis")
	} else {
		selectionStore = memory.NewSelectionStore(cfg.SelectionTTL)
		logger.Info("selection store: memory")
	}

	// Search: Meilisearch when configured, Postgres full-text search as fallback
	var engine search.Engine
	var meili *search.Meili
	if cfg.MeiliURL != "" {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliAPIKey, logger)
		defer meili.Close()
		engine = meili
	}
	searchService := search.NewService(engine, materialRepo, logger)
	if err := searchService.ReindexAll(ctx, docRepo, materialRepo); err != nil {
		logger.Warn("search reindex failed", "error", err)
	}
	if meili != nil {
		meili.OnRecover(func() {
			resyncCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()
			if err := searchService.Resync(resyncCtx, docRepo, materialRepo); err != nil {
				logger.Warn("search resync after outage failed", "error", err)
			}
		})
	}

	// Status workflow
	statuses, err := workflow.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load status workflow: %v", err)
	}

	// Create library services
	treeCache := serviceLibrary.NewTreeCache(docRepo, materialRepo, logger)
	treeService := serviceLibrary.NewTreeService(treeCache, logger)
	catalogueService := serviceLibrary.NewCatalogueService(catalogueRepo, docTypeRepo, logger)
	docService := serviceLibrary.NewDocumentService(docRepo, materialRepo, catalogueRepo, docTypeRepo, treeCache, searchService, logger)
	materialService := serviceLibrary.NewMaterialService(
		materialRepo,
		treeCache,
		statuses,
		txManager,
		render.NewRenderer(),
		render.NewImporter(),
		searchService,
		logger,
	)
	selectionService := serviceLibrary.NewSelectionService(selectionStore, treeCache, materialService, logger)
	annotationService := serviceLibrary.NewAnnotationService(annotationRepo, materialRepo, logger)

	// Create handlers
	catalogueHandler := handler.NewCatalogueHandler(catalogueService, logger)
	docHandler := handler.NewDocumentHandler(docService, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	materialHandler := handler.NewMaterialHandler(materialService, logger)
	selectionHandler := handler.NewSelectionHandler(selectionService, logger)
	annotationHandler := handler.NewAnnotationHandler(annotationService, logger)
	searchHandler := handler.NewSearchHandler(searchService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns). Reads are public,
	// mutations and per-user resources require an authenticated user.
	mux := http.NewServeMux()
	authed := middleware.RequireAuth

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Catalogue routes
	mux.HandleFunc("GET /api/catalogues", catalogueHandler.ListCatalogues)
	mux.HandleFunc("POST /api/catalogues", authed(catalogueHandler.CreateCatalogue))
	mux.HandleFunc("GET /api/catalogues/{id}", catalogueHandler.GetCatalogue)
	mux.HandleFunc("PATCH /api/catalogues/{id}", authed(catalogueHandler.UpdateCatalogue))
	mux.HandleFunc("DELETE /api/catalogues/{id}", authed(catalogueHandler.DeleteCatalogue))

	// Document type routes
	mux.HandleFunc("GET /api/document-types", catalogueHandler.ListDocumentTypes)
	mux.HandleFunc("POST /api/document-types", authed(catalogueHandler.CreateDocumentType))
	mux.HandleFunc("DELETE /api/document-types/{id}", authed(catalogueHandler.DeleteDocumentType))

	// Document routes
	mux.HandleFunc("GET /api/documents", docHandler.ListDocuments)
	mux.HandleFunc("POST /api/documents", authed(docHandler.CreateDocument))
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", authed(docHandler.UpdateDocument))
	mux.HandleFunc("DELETE /api/documents/{id}", authed(docHandler.DeleteDocument))

	// Tree and ordering
	mux.HandleFunc("GET /api/documents/{id}/tree", treeHandler.GetTree)
	mux.HandleFunc("POST /api/documents/{id}/reorder", authed(materialHandler.Reorder))
	mux.HandleFunc("PATCH /api/documents/{id}/positions", authed(materialHandler.UpdatePosition))

	// Material routes
	mux.HandleFunc("POST /api/documents/{id}/materials", authed(materialHandler.CreateMaterial))
	mux.HandleFunc("POST /api/materials/status", authed(materialHandler.TransitionStatus))
	mux.HandleFunc("GET /api/materials/{id}", materialHandler.GetMaterial)
	mux.HandleFunc("PATCH /api/materials/{id}", authed(materialHandler.UpdateMaterial))
	mux.HandleFunc("DELETE /api/materials/{id}", authed(materialHandler.DeleteMaterial))
	mux.HandleFunc("GET /api/materials/{id}/html", materialHandler.RenderMaterial)

	// Selection routes (per user)
	mux.HandleFunc("GET /api/documents/{id}/selection", authed(selectionHandler.GetSelection))
	mux.HandleFunc("DELETE /api/documents/{id}/selection", authed(selectionHandler.ClearSelection))
	mux.HandleFunc("POST /api/documents/{id}/selection/toggle", authed(selectionHandler.Toggle))
	mux.HandleFunc("POST /api/documents/{id}/selection/status", authed(selectionHandler.ApplyStatus))

	// Annotation routes (per user)
	mux.HandleFunc("GET /api/annotations", authed(annotationHandler.ListAnnotations))
	mux.HandleFunc("POST /api/annotations", authed(annotationHandler.CreateAnnotation))
	mux.HandleFunc("PATCH /api/annotations/{id}", authed(annotationHandler.UpdateAnnotation))
	mux.HandleFunc("DELETE /api/annotations/{id}", authed(annotationHandler.DeleteAnnotation))

	// Search
	mux.HandleFunc("GET /api/search", searchHandler.Search)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLog → Recovery → Auth → Routes
	switch {
	case cfg.JWKSURL != "":
		jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
		h = middleware.Authenticate(jwtVerifier, logger)(h)
	case cfg.DevAuth():
		logger.Warn("DEV MODE: all requests act as a fixed user (NEVER use in production!)", "user_id", cfg.DevUserID)
		h = middleware.DevUser(cfg.DevUserID)(h)
	default:
		logger.Warn("no identity provider configured, mutating routes will reject every request")
	}
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLog(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOriginList(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
