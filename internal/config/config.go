package config

import (
	"errors"
	"os"
	"strings"
)

type Config struct {
	AppHost  string
	HTTPPort string
	LogLevel string

	Elasticsearch struct {
		URL           string
		Username      string
		Password      string
		SkipTLSVerify bool
		BookIndex     string
	}

	KafkaBrokers []string
	KafkaGroupID string
	KafkaTopics  []string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppHost:  getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort: firstEnv("APP_PORT", "HTTP_PORT", "8097"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	cfg.Elasticsearch.URL = getEnv("ELASTICSEARCH_URL", "http://localhost:9200")
	cfg.Elasticsearch.Username = getEnv("ELASTICSEARCH_USERNAME", "")
	cfg.Elasticsearch.Password = getEnv("ELASTICSEARCH_PASSWORD", "")
	cfg.Elasticsearch.SkipTLSVerify = getEnv("ELASTICSEARCH_SKIP_TLS_VERIFY", "") == "true"
	cfg.Elasticsearch.BookIndex = getEnv("BOOK_INDEX", "bookindex")

	cfg.KafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.KafkaGroupID = getEnv("KAFKA_GROUP_ID", "booksearch")
	cfg.KafkaTopics = splitList(getEnv("KAFKA_TOPICS", ""))
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Elasticsearch.URL == "" {
		return errors.New("config: ELASTICSEARCH_URL is required")
	}
	if c.Elasticsearch.BookIndex == "" {
		return errors.New("config: BOOK_INDEX is required")
	}
	return nil
}

func (c *Config) AppEnv() string {
	return getEnv("APP_ENV", "development")
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	keys := keysAndDef[:len(keysAndDef)-1]
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
