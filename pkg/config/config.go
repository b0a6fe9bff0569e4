// pkg/config/config.go
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env     string
	BaseDir string // log file and .env location
	LogDir  string // optional daily zap log file directory

	// Identity provider / Graph credentials
	TenantID      string
	ClientID      string
	ClientSecret  string
	AuthorityHost string
	GraphBaseURL  string

	// SharePoint destination
	Domain    string
	SiteName  string
	DriveName string

	// Local source and routing
	SourceFolder     string
	RoutingRulesFile string

	// Report mail
	SenderEmail     string
	RecipientEmails string

	HTTPTimeout time.Duration

	// Optional infrastructure
	RedisURL       string
	RunLockTTL     time.Duration
	PushgatewayURL string
}

// Load resolves the base directory, reads <base>/.env and then the process
// environment. Variables already present in the environment win over .env.
func Load() Config {
	return LoadFrom(env("BASE_DIR", executableDir()))
}

func LoadFrom(baseDir string) Config {
	_ = godotenv.Load(filepath.Join(baseDir, ".env"))
	return Config{
		Env:              env("APP_ENV", "prod"),
		BaseDir:          baseDir,
		LogDir:           env("LOG_DIR", ""),
		TenantID:         env("TENANT_ID", ""),
		ClientID:         env("CLIENT_ID", ""),
		ClientSecret:     env("CLIENT_SECRET", ""),
		AuthorityHost:    strings.TrimRight(env("AUTHORITY_HOST", "https://login.microsoftonline.com"), "/"),
		GraphBaseURL:     strings.TrimRight(env("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"), "/"),
		Domain:           env("DOMAIN", ""),
		SiteName:         env("SITE_NAME", ""),
		DriveName:        env("DRIVE_NAME", ""),
		SourceFolder:     env("SOURCE_FOLDER", ""),
		RoutingRulesFile: env("ROUTING_RULES_FILE", ""),
		SenderEmail:      strings.TrimSpace(env("SENDER_EMAIL", "")),
		RecipientEmails:  env("RECIPIENT_EMAILS", ""),
		HTTPTimeout:      envDur("HTTP_TIMEOUT_SECONDS", 60) * time.Second,
		RedisURL:         env("REDIS_URL", ""),
		RunLockTTL:       envDur("RUN_LOCK_TTL_SECONDS", 3600) * time.Second,
		PushgatewayURL:   env("PUSHGATEWAY_URL", ""),
	}
}

// Recipients splits RECIPIENT_EMAILS on commas, dropping blank entries.
func (c Config) Recipients() []string {
	var out []string
	for _, p := range strings.Split(c.RecipientEmails, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// LogFilePath is the per-run log artifact for a run started at ts.
func (c Config) LogFilePath(ts time.Time) string {
	return filepath.Join(c.BaseDir, "TaskSchedulerLog_"+ts.Format("20060102_150405")+".txt")
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return time.Duration(i)
		}
	}
	return time.Duration(def)
}
