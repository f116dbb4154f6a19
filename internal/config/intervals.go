package config

import "time"

// Worker intervals
const (
	// ConversationFlushInterval defines how often dirty conversations are saved to PostgreSQL
	ConversationFlushInterval = 30 * time.Second

	// ShutdownTimeout bounds graceful HTTP shutdown
	ShutdownTimeout = 10 * time.Second

	// CacheOpTimeout bounds a single Redis round trip
	CacheOpTimeout = 2 * time.Second
)
