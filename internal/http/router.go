package http

import (
	"github.com/gin-gonic/gin"

	"github.com/concertlog/concertlog/internal/database"
	"github.com/concertlog/concertlog/internal/importer"
	"github.com/concertlog/concertlog/internal/setlist"
)

// RouterConfig holds every dependency the router wires into
// controllers. Optional fields disable their endpoints when nil.
type RouterConfig struct {
	Database *database.Database
	Version  string

	ShowStore ShowStore

	// NewBatch builds a fresh orchestrator per import batch.
	NewBatch func() *importer.Orchestrator

	// Vision enables POST /api/import/screenshot.
	Vision ScreenshotReader

	// ArtistSearcher enables GET /api/artists/search.
	ArtistSearcher setlist.ArtistSearcher

	// EnqueueEnrich, when set, queues setlist enrichment after a
	// manual show add.
	EnqueueEnrich func(showID uint)
}

// NewRouter creates and configures the HTTP router with all
// endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	if cfg.ShowStore != nil {
		showsController := NewShowsController(cfg.ShowStore, cfg.EnqueueEnrich)
		router.GET("/api/shows", showsController.ListShows)
		router.POST("/api/shows", showsController.CreateShow)
		router.GET("/api/shows/:id", showsController.GetShow)
		router.PATCH("/api/shows/:id", showsController.UpdateShow)
		router.DELETE("/api/shows/:id", showsController.DeleteShow)
		router.PATCH("/api/shows/:id/songs/:songId", showsController.UpdateSong)
		router.GET("/api/stats", showsController.GetStats)
	}

	if cfg.NewBatch != nil {
		importController := NewImportController(cfg.NewBatch, cfg.Vision)
		router.POST("/api/import/file", importController.ImportFile)
		router.POST("/api/import/screenshot", importController.ImportScreenshot)
		router.POST("/api/import/records", importController.ImportRecords)
		router.POST("/api/import/:batch/mapping", importController.Remap)
		router.POST("/api/import/:batch/skip", importController.Skip)
		router.POST("/api/import/:batch/commit", importController.Commit)
		router.GET("/api/import/:batch/progress", importController.Progress)
		router.DELETE("/api/import/:batch", importController.Discard)
	}

	if cfg.ArtistSearcher != nil {
		artistsController := NewArtistsController(cfg.ArtistSearcher)
		router.GET("/api/artists/search", artistsController.Search)
	}

	return router
}
