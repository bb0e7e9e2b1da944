package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full application configuration, built once in main.
type Config struct {
	Server    Server
	Postgres  Postgres
	Redis     Redis
	Kafka     Kafka
	OpenAI    OpenAI
	Decision  Decision
	RateLimit RateLimit
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
	// ReviewerSigningKey signs and validates reviewer JWTs for the
	// decision and audit endpoints.
	ReviewerSigningKey string
	// ReviewerSecretHash is the bcrypt hash of the shared reviewer secret
	// exchanged for a token.
	ReviewerSecretHash string
}

// Postgres holds connection settings for the primary store.
type Postgres struct {
	URL string
}

// Redis holds connection settings for the assistant answer cache.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka holds settings for the audit outbox relay.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// OpenAI holds settings for the hosted extraction and RAG collaborators.
type OpenAI struct {
	APIKey        string
	BaseURL       string
	VisionModel   string
	AnswerModel   string
	VectorStoreID string
	Timeout       time.Duration
}

// Decision holds the configurable rule thresholds. Defaults follow the
// documented business rules; see internal/decision for how each is applied.
type Decision struct {
	// NameDistancePer10 is the allowed Levenshtein distance per 10
	// characters of the longer normalized name.
	NameDistancePer10 int
	// AutoApproveThreshold is the maximum risk score for automatic approval.
	AutoApproveThreshold float64
	// ManualReviewThreshold is the risk score at which evaluation escalates
	// to manual review even without a hard field mismatch.
	ManualReviewThreshold float64
	// ExpiredIDAutoReject rejects applications whose ID is expired.
	ExpiredIDAutoReject bool
}

// RateLimit bounds requests per client IP across the HTTP surface.
type RateLimit struct {
	Requests int
	Window   time.Duration
	Disabled bool
}

// FromEnv builds the Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:               envOr("HSA_ADDR", ":8080"),
			ReviewerSigningKey: envOr("REVIEWER_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			ReviewerSecretHash: os.Getenv("REVIEWER_SECRET_HASH"),
		},
		Postgres: Postgres{
			URL: envOr("DATABASE_URL", "postgres://localhost:5432/hsaonboard?sslmode=disable"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:    splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "hsa.audit.events"),
		},
		OpenAI: OpenAI{
			APIKey:        os.Getenv("OPENAI_API_KEY"),
			BaseURL:       envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			VisionModel:   envOr("OPENAI_VISION_MODEL", "gpt-4o"),
			AnswerModel:   envOr("OPENAI_ANSWER_MODEL", "gpt-4o-mini"),
			VectorStoreID: os.Getenv("OPENAI_VECTOR_STORE_ID"),
			Timeout:       envDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		RateLimit: RateLimit{
			Requests: envInt("RATE_LIMIT_REQUESTS", 120),
			Window:   envDuration("RATE_LIMIT_WINDOW", time.Minute),
			Disabled: os.Getenv("RATE_LIMIT_DISABLED") == "true",
		},
		Decision: Decision{
			NameDistancePer10:     envInt("DECISION_NAME_DISTANCE_PER_10", 1),
			AutoApproveThreshold:  envFloat("DECISION_AUTO_APPROVE_THRESHOLD", 0.1),
			ManualReviewThreshold: envFloat("DECISION_MANUAL_REVIEW_THRESHOLD", 0.3),
			ExpiredIDAutoReject:   os.Getenv("DECISION_EXPIRED_ID_AUTO_REJECT") != "false",
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(csv); i++ {
		if i == len(csv) || csv[i] == ',' {
			if i > start {
				out = append(out, csv[start:i])
			}
			start = i + 1
		}
	}
	return out
}
