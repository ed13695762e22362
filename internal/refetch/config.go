package refetch

import "time"

// Config tunes the Executor. Zero values fall back to the defaults noted on
// each field.
type Config struct {
	// Shards is the number of worker goroutines (default 4). Jobs with the
	// same key always land on the same shard.
	Shards int

	// QueueSize is each shard's buffered capacity (default 128).
	QueueSize int

	// EnqueueTimeout bounds how long Submit waits for a full shard before
	// reporting back-pressure (default 100ms).
	EnqueueTimeout time.Duration

	// MaxAttempts caps runs per job including the first (default 8).
	// Irrecoverable errors stop a job regardless.
	MaxAttempts int

	// BaseBackoff is the initial retry interval (default 100ms).
	BaseBackoff time.Duration

	// MaxInterval caps the exponential backoff (default 20s).
	MaxInterval time.Duration

	// ErrorHandler receives a job's final error after retries are
	// exhausted or a failure is irrecoverable. May be nil.
	ErrorHandler func(error)
}

func (c *Config) applyDefaults() {
	if c.Shards <= 0 {
		c.Shards = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 128
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = 100 * time.Millisecond
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 8
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 100 * time.Millisecond
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 20 * time.Second
	}
}
