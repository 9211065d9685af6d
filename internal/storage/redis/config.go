package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings. Rooms, their players and game state share RoomTTL so a
	// room's records expire together; the cleanup sweep reclaims abandoned
	// rooms long before these fire, the TTLs are a backstop.
	GuestUserTTL time.Duration
	RoomTTL      time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		GuestUserTTL: 24 * time.Hour,
		RoomTTL:      24 * time.Hour,
	}
}
