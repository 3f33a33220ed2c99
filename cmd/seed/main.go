package main

import (
	"context"
	"flag"
	"log"

	"lexlib/internal/config"
	"lexlib/internal/render"
	"lexlib/internal/repository/postgres"
	postgresLibrary "lexlib/internal/repository/postgres/library"
	"lexlib/internal/seed"
	serviceLibrary "lexlib/internal/service/library"
	"lexlib/internal/workflow"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed the demo document")
	clearData := flag.Bool("clear-data", false, "Delete all rows (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := config.NewLogger(cfg.Debug, nil)

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	schema := seed.NewSchema(pool, cfg.TablePrefix, logger)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := schema.DropAll(ctx); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := schema.Run(ctx); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := schema.ClearData(ctx); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	// Seed through the service layer so positions and statuses follow the normal rules
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	catalogueRepo := postgresLibrary.NewCatalogueRepository(repoConfig)
	docTypeRepo := postgresLibrary.NewDocumentTypeRepository(repoConfig)
	docRepo := postgresLibrary.NewDocumentRepository(repoConfig)
	materialRepo := postgresLibrary.NewMaterialRepository(repoConfig)

	statuses, err := workflow.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load status workflow: %v", err)
	}

	// The server reindexes search on startup
	indexer := serviceLibrary.NopIndexer{}
	treeCache := serviceLibrary.NewTreeCache(docRepo, materialRepo, logger)
	seeder := seed.NewLibrarySeeder(
		serviceLibrary.NewCatalogueService(catalogueRepo, docTypeRepo, logger),
		serviceLibrary.NewDocumentService(docRepo, materialRepo, catalogueRepo, docTypeRepo, treeCache, indexer, logger),
		serviceLibrary.NewMaterialService(
			materialRepo,
			treeCache,
			statuses,
			postgres.NewTransactionManager(pool, logger),
			render.NewRenderer(),
			render.NewImporter(),
			indexer,
			logger,
		),
		logger,
	)

	log.Println("📝 Seeding demo document...")
	doc, err := seeder.SeedDemo(ctx)
	if err != nil {
		log.Fatalf("Failed to seed demo document: %v", err)
	}
	if doc == nil {
		log.Println("ℹ️  Demo document already present")
	} else {
		log.Printf("✅ Created document %s (ID: %s)", doc.Ref, doc.ID)
	}

	log.Println("🎉 Seeding complete!")
}
