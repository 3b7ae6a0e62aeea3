package infra

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	MigrateOnStart   bool
	AdminPassword    string
	AdminTokenSecret string
	PublicDir        string

	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	MailFrom         string
	ContactRecipient string

	GeoIPDBPath          string
	ImageSourceAllowlist []string
	WatermarkText        string
	WatermarkMaxWidth    int
	CORSOrigins          []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		MigrateOnStart:   getEnvBool("MIGRATE_ON_START", false),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		AdminTokenSecret: os.Getenv("ADMIN_TOKEN_SECRET"),
		PublicDir:        getEnv("PUBLIC_DIR", "./public"),

		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3Region:        getEnv("S3_REGION", "auto"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		S3PublicBaseURL: strings.TrimRight(os.Getenv("S3_PUBLIC_BASE_URL"), "/"),

		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUsername:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		MailFrom:         getEnv("MAIL_FROM", "no-reply@localhost"),
		ContactRecipient: os.Getenv("CONTACT_RECIPIENT"),

		GeoIPDBPath:       os.Getenv("GEOIP_DB_PATH"),
		WatermarkText:     getEnv("WATERMARK_TEXT", "© Studio"),
		WatermarkMaxWidth: getEnvInt("WATERMARK_MAX_WIDTH", 1600),
		CORSOrigins:       getEnvList("CORS_ORIGINS"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}
	if cfg.AdminTokenSecret == "" {
		cfg.AdminTokenSecret = cfg.AdminPassword
	}

	cfg.ImageSourceAllowlist = buildAllowlist(cfg.S3PublicBaseURL, getEnvList("IMAGE_HOST_ALLOWLIST"))

	return cfg, nil
}

// ObjectStoreEnabled reports whether enough settings exist to talk to the bucket.
func (c *Config) ObjectStoreEnabled() bool {
	return c != nil && c.S3Bucket != "" && c.S3Endpoint != ""
}

// buildAllowlist merges the public object store host with explicit hosts.
func buildAllowlist(publicBaseURL string, extra []string) []string {
	seen := map[string]struct{}{}
	if publicBaseURL != "" {
		if u, err := url.Parse(publicBaseURL); err == nil && u.Hostname() != "" {
			seen[strings.ToLower(u.Hostname())] = struct{}{}
		}
	}
	for _, host := range extra {
		host = strings.ToLower(strings.TrimSpace(host))
		if host != "" {
			seen[host] = struct{}{}
		}
	}
	hosts := make([]string, 0, len(seen))
	for host := range seen {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
