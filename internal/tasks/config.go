package tasks

import "time"

// Config tunes the task queue.
type Config struct {
	// Workers is the number of concurrent task workers.
	Workers int

	// ReleaseAfter is when stuck tasks are released back to the queue.
	ReleaseAfter time.Duration

	// CleanupInterval is how often completed tasks are purged.
	CleanupInterval time.Duration
}

// DefaultConfig returns queue defaults suited to a single-node
// deployment.
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}
