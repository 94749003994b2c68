package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Stores get their database
// handles injected at startup; nothing reads the environment after boot.
type Server struct {
	Addr string

	// IdentityDSN points at the identity database (users, referee links,
	// confirmations, revocations). FixtureDSN points at the read-mostly
	// fixture database (games, teams, tournaments, referee assignments).
	IdentityDSN string
	FixtureDSN  string

	JWTSigningKey string
	JWTTTL        time.Duration

	// RedisURL enables the Redis token revocation list when set; empty
	// falls back to the in-memory list.
	RedisURL string

	// KafkaBrokers enables the Kafka audit publisher when non-empty.
	KafkaBrokers []string
	AuditTopic   string

	// CDNBaseURL is the base for club logo and referee photo links.
	CDNBaseURL string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:          getenv("ARBITER_ADDR", ":8080"),
		IdentityDSN:   os.Getenv("IDENTITY_DB_DSN"),
		FixtureDSN:    os.Getenv("FIXTURE_DB_DSN"),
		JWTSigningKey: getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTTTL:        durationEnv("JWT_TTL_SECONDS", time.Hour),
		RedisURL:      os.Getenv("REDIS_URL"),
		AuditTopic:    getenv("AUDIT_TOPIC", "arbiter.audit"),
		CDNBaseURL:    os.Getenv("CDN_BASE_URL"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
