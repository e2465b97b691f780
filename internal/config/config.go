package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Setlist
		Vision
		Import
		Tasks
		SetlistSync
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Setlist struct {
		BaseURL         string
		APIKey          string
		PageLimit       int           // max catalog pages scanned per artist variant
		RequestInterval time.Duration // pacing between catalog requests
		RequestTimeout  time.Duration
	}
	Vision struct {
		APIKey string
		Model  string
	}
	Import struct {
		CommitDelay time.Duration // pause between successive show writes
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	SetlistSync struct {
		Enabled  bool
		Schedule string // Cron format: "0 4 * * *" = daily at 04:00
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8196)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Setlist catalog defaults
	v.SetDefault("setlist_base_url", "https://api.setlist.fm/rest/1.0")
	v.SetDefault("setlist_api_key", "")
	v.SetDefault("setlist_page_limit", 3)
	v.SetDefault("setlist_request_interval", "300ms")
	v.SetDefault("setlist_request_timeout", "10s")

	// Screenshot analysis defaults
	v.SetDefault("vision_api_key", "")
	v.SetDefault("vision_model", "gpt-4o-mini")

	// Import defaults
	v.SetDefault("import_commit_delay", "100ms")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Scheduled setlist re-sync defaults
	v.SetDefault("setlist_sync_enabled", false)
	v.SetDefault("setlist_sync_schedule", "0 4 * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Setlist: Setlist{
			BaseURL:         v.GetString("SETLIST_BASE_URL"),
			APIKey:          v.GetString("SETLIST_API_KEY"),
			PageLimit:       v.GetInt("SETLIST_PAGE_LIMIT"),
			RequestInterval: v.GetDuration("SETLIST_REQUEST_INTERVAL"),
			RequestTimeout:  v.GetDuration("SETLIST_REQUEST_TIMEOUT"),
		},
		Vision: Vision{
			APIKey: v.GetString("VISION_API_KEY"),
			Model:  v.GetString("VISION_MODEL"),
		},
		Import: Import{
			CommitDelay: v.GetDuration("IMPORT_COMMIT_DELAY"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		SetlistSync: SetlistSync{
			Enabled:  v.GetBool("SETLIST_SYNC_ENABLED"),
			Schedule: v.GetString("SETLIST_SYNC_SCHEDULE"),
		},
	}
}
