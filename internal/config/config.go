package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PratikDhanave/trapwatch-service/internal/geofence"
)

// Config contains runtime configuration required by the service.
// It is built once at start and passed to components explicitly.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	StorageDriver string
	DBURL         string
	SQLitePath    string

	SharedSecret        string
	Zones               []geofence.Zone
	DefaultContact      string
	EscalationThreshold int

	Notifier      string
	NotifyTimeout time.Duration

	SMTPAddr     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	KafkaBrokers    []string
	KafkaAlertTopic string

	RedisURL         string
	RedisAlertStream string

	OperatorKeys map[string]string // apiKey -> operator name
}

// Load reads values from environment variables, applying defaults where unset.
// OPERATOR_KEYS format: "name1:key1,name2:key2"
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:         envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		StorageDriver:    envOrDefault("STORAGE_DRIVER", "postgres"),
		DBURL:            strings.TrimSpace(os.Getenv("DB_URL")),
		SQLitePath:       envOrDefault("SQLITE_PATH", "trapwatch.db"),
		SharedSecret:     os.Getenv("SHARED_SECRET"),
		DefaultContact:   strings.TrimSpace(os.Getenv("DEFAULT_CONTACT")),
		Notifier:         envOrDefault("NOTIFIER", "log"),
		SMTPAddr:         strings.TrimSpace(os.Getenv("SMTP_ADDR")),
		SMTPFrom:         strings.TrimSpace(os.Getenv("SMTP_FROM")),
		SMTPUsername:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		KafkaBrokers:     parseList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertTopic:  envOrDefault("KAFKA_ALERT_TOPIC", "trap-alerts"),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		RedisAlertStream: envOrDefault("REDIS_ALERT_STREAM", "trap-alerts"),
	}

	var err error
	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.NotifyTimeout, err = parseDuration("NOTIFY_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.EscalationThreshold, err = parseThreshold(); err != nil {
		return nil, err
	}
	if cfg.Zones, err = loadZones(); err != nil {
		return nil, err
	}
	if cfg.OperatorKeys, err = parseOperatorKeys(os.Getenv("OPERATOR_KEYS")); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SharedSecret == "" {
		return errors.New("SHARED_SECRET required")
	}
	if c.DefaultContact == "" {
		return errors.New("DEFAULT_CONTACT required")
	}

	switch c.StorageDriver {
	case "memory", "sqlite":
	case "postgres":
		if c.DBURL == "" {
			return errors.New("DB_URL required when STORAGE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be memory, sqlite or postgres, got %q", c.StorageDriver)
	}

	switch c.Notifier {
	case "log", "webhook":
	case "smtp":
		if c.SMTPAddr == "" || c.SMTPFrom == "" {
			return errors.New("SMTP_ADDR and SMTP_FROM required when NOTIFIER=smtp")
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 || c.KafkaAlertTopic == "" {
			return errors.New("KAFKA_BROKERS and KAFKA_ALERT_TOPIC required when NOTIFIER=kafka")
		}
	case "redis":
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when NOTIFIER=redis")
		}
	default:
		return fmt.Errorf("NOTIFIER must be log, webhook, smtp, kafka or redis, got %q", c.Notifier)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseThreshold() (int, error) {
	n, err := strconv.Atoi(envOrDefault("ESCALATION_THRESHOLD", "50"))
	if err != nil || n < 0 {
		return 0, errors.New("invalid ESCALATION_THRESHOLD: must be a non-negative integer")
	}
	return n, nil
}

// loadZones reads the ordered zone list from GEOFENCE_ZONES_FILE or, failing
// that, inline GEOFENCE_ZONES. Both accept YAML or JSON.
func loadZones() ([]geofence.Zone, error) {
	var (
		raw    []byte
		source string
	)
	if path := strings.TrimSpace(os.Getenv("GEOFENCE_ZONES_FILE")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read GEOFENCE_ZONES_FILE: %w", err)
		}
		raw, source = b, "GEOFENCE_ZONES_FILE"
	} else if inline := strings.TrimSpace(os.Getenv("GEOFENCE_ZONES")); inline != "" {
		raw, source = []byte(inline), "GEOFENCE_ZONES"
	} else {
		return nil, nil
	}

	var zones []geofence.Zone
	if err := yaml.Unmarshal(raw, &zones); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	for i, z := range zones {
		if err := z.Validate(); err != nil {
			return nil, fmt.Errorf("%s entry %d: %w", source, i, err)
		}
	}
	return zones, nil
}

func parseOperatorKeys(raw string) (map[string]string, error) {
	keys := map[string]string{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return keys, nil
	}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New(`OPERATOR_KEYS must be "name:key,name:key"`)
		}
		name := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])
		if name == "" || key == "" {
			return nil, errors.New(`OPERATOR_KEYS must be "name:key,name:key"`)
		}
		keys[key] = name
	}
	return keys, nil
}
