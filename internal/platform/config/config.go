package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Empty database, redis, or
// kafka settings degrade to in-memory implementations so the binary runs
// standalone in development and tests.
type Server struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string

	// CheckinRateLimit caps unauthenticated submissions per IP per window;
	// zero disables throttling.
	CheckinRateLimit  int
	CheckinRateWindow time.Duration

	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("GATEPASS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("GATEPASS_AUDIT_TOPIC")
	if topic == "" {
		topic = "gatepass.audit"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; the session provider overrides it in any real
		// deployment.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	checkinLimit := 30
	if raw := os.Getenv("GATEPASS_CHECKIN_RATE_LIMIT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			checkinLimit = n
		}
	}

	var brokers []string
	if raw := os.Getenv("GATEPASS_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("GATEPASS_DATABASE_URL"),
		RedisURL:      os.Getenv("GATEPASS_REDIS_URL"),
		KafkaBrokers:  brokers,
		AuditTopic:    topic,
		JWTSigningKey: jwtSigningKey,

		CheckinRateLimit:  checkinLimit,
		CheckinRateWindow: time.Minute,

		ShutdownTimeout: 10 * time.Second,
	}
}
