package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/concertlog/concertlog/internal/config"
	"github.com/concertlog/concertlog/internal/database"
	"github.com/concertlog/concertlog/internal/database/shows"
	"github.com/concertlog/concertlog/internal/enrich"
	http_controllers "github.com/concertlog/concertlog/internal/http"
	"github.com/concertlog/concertlog/internal/importer"
	"github.com/concertlog/concertlog/internal/scheduler"
	"github.com/concertlog/concertlog/internal/setlist"
	"github.com/concertlog/concertlog/internal/tasks"
	"github.com/concertlog/concertlog/internal/vision"
)

// ShutdownFunc is called during graceful shutdown to clean up
// resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then drains it
// within the configured shutdown timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires every component and serves until shutdown.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Concertlog v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	repo := shows.NewRepository(db.DB)

	// Setlist catalog client. Without an API key the matcher stays
	// nil and imports skip enrichment.
	var matcher *setlist.Matcher
	var catalogClient *setlist.Client
	if cfg.Setlist.APIKey != "" {
		catalogClient = setlist.NewClient(
			cfg.Setlist.BaseURL,
			cfg.Setlist.APIKey,
			cfg.Setlist.RequestInterval,
			cfg.Setlist.RequestTimeout,
		)
		matcher = setlist.NewMatcher(catalogClient, cfg.Setlist.PageLimit)
	} else {
		log.Printf("WARNING: SETLIST_API_KEY is not set. Setlist enrichment is disabled.")
	}

	var visionClient *vision.Client
	if cfg.Vision.APIKey != "" {
		visionClient = vision.NewClient(cfg.Vision.APIKey, cfg.Vision.Model)
	} else {
		log.Printf("WARNING: VISION_API_KEY is not set. Screenshot import is disabled.")
	}

	// Task queue for background enrichment.
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var enqueueEnrich func(showID uint)
	if cfg.Tasks.Enabled && matcher != nil {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		enricher := enrich.NewEnricher(repo, matcher)
		taskClient.Register(
			tasks.NewEnrichShowQueue(enricher),
			tasks.NewEnrichPendingQueue(enricher),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		enqueueEnrich = func(showID uint) {
			if _, err := taskClient.Add(tasks.EnrichShowTask{ShowID: showID}).Save(); err != nil {
				log.Printf("Queueing enrichment for show %d failed: %v", showID, err)
			}
		}
	}

	// Periodic re-match of shows still missing setlists.
	var syncScheduler *scheduler.SetlistSyncScheduler
	if cfg.SetlistSync.Enabled && taskClient != nil {
		syncScheduler = scheduler.NewSetlistSyncScheduler(taskClient, cfg.SetlistSync.Schedule)
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start setlist sync scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:      db,
		Version:       version,
		ShowStore:     repo,
		EnqueueEnrich: enqueueEnrich,
		NewBatch: func() *importer.Orchestrator {
			var m importer.SetlistMatcher
			if matcher != nil {
				m = matcher
			}
			return importer.NewOrchestrator(
				repo,
				m,
				http_controllers.DefaultUserID,
				importer.WithCommitDelay(cfg.Import.CommitDelay),
				importer.WithSessionStore(repo),
			)
		},
	}
	if visionClient != nil {
		routerCfg.Vision = visionClient
	}
	if catalogClient != nil {
		routerCfg.ArtistSearcher = catalogClient
	}

	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, func(ctx context.Context) {
		if syncScheduler != nil {
			syncScheduler.Stop()
		}
		if taskClient != nil {
			if taskCtxCancel != nil {
				taskCtxCancel()
			}
			taskClient.Stop(ctx)
		}
	})
}
