package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/pders01/reflexion/internal/backend"
	"github.com/pders01/reflexion/internal/progression"
)

// EnvPrefix prefixes environment overrides, e.g. REFLEXION_BACKEND_URL
const EnvPrefix = "REFLEXION"

// File is the on-disk layout of config.toml
type File struct {
	Backend     BackendSection     `toml:"backend"`
	Auth        AuthSection        `toml:"auth"`
	Server      ServerSection      `toml:"server"`
	Progression ProgressionSection `toml:"progression"`
	Snapshot    SnapshotSection    `toml:"snapshot"`
	Retention   RetentionSection   `toml:"retention"`
}

type BackendSection struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
	APIKey  string `toml:"api_key"`
}

type AuthSection struct {
	Token      string `toml:"token"`
	OrgContext string `toml:"org_context"`
}

type ServerSection struct {
	Addr string `toml:"addr"`
}

type ProgressionSection struct {
	Aggregation string `toml:"aggregation"`
}

type SnapshotSection struct {
	Dir string `toml:"dir"`
}

type RetentionSection struct {
	Days         int      `toml:"days"`
	PreserveTags []string `toml:"preserve_tags"`
}

// Default returns the built-in configuration
func Default() File {
	return File{
		Backend: BackendSection{
			URL:     backend.DefaultURL,
			Timeout: backend.DefaultTimeout.String(),
		},
		Server:      ServerSection{Addr: ":3000"},
		Progression: ProgressionSection{Aggregation: string(progression.AggregateWeighted)},
		Snapshot:    SnapshotSection{Dir: "snapshots"},
		Retention: RetentionSection{
			Days:         90,
			PreserveTags: []string{"important", "baseline"},
		},
	}
}

// Marshal encodes f as TOML
func Marshal(f File) ([]byte, error) {
	data, err := toml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// SetDefaults registers defaults and environment overrides with viper
func SetDefaults() {
	d := Default()
	viper.SetDefault("backend.url", d.Backend.URL)
	viper.SetDefault("backend.timeout", d.Backend.Timeout)
	viper.SetDefault("backend.api_key", d.Backend.APIKey)
	viper.SetDefault("auth.token", d.Auth.Token)
	viper.SetDefault("auth.org_context", d.Auth.OrgContext)
	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("progression.aggregation", d.Progression.Aggregation)
	viper.SetDefault("snapshot.dir", d.Snapshot.Dir)
	viper.SetDefault("retention.days", d.Retention.Days)
	viper.SetDefault("retention.preserve_tags", d.Retention.PreserveTags)

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// GetBackendURL returns the backend base url
func GetBackendURL() string {
	return viper.GetString("backend.url")
}

// GetBackendTimeout returns the per-call backend timeout
func GetBackendTimeout() time.Duration {
	d := viper.GetDuration("backend.timeout")
	if d <= 0 {
		return backend.DefaultTimeout
	}
	return d
}

// GetAPIKey returns the proxy api key sent as X-Api-Key
func GetAPIKey() string {
	return viper.GetString("backend.api_key")
}

// GetServerAddr returns the listen address of the proxy server
func GetServerAddr() string {
	return viper.GetString("server.addr")
}

// GetAggregation returns the configured completion aggregation
func GetAggregation() (progression.Aggregation, error) {
	return progression.ParseAggregation(viper.GetString("progression.aggregation"))
}

// GetSnapshotDir returns the directory snapshots are stored under on their branch
func GetSnapshotDir() string {
	return viper.GetString("snapshot.dir")
}

// GetRetentionDays returns the retention period in days
func GetRetentionDays() int {
	return viper.GetInt("retention.days")
}

// GetPreserveTags returns tags that exempt snapshots from pruning
func GetPreserveTags() []string {
	return viper.GetStringSlice("retention.preserve_tags")
}

// ShouldPreserve checks if a snapshot with the given tags must be kept
func ShouldPreserve(tags []string) bool {
	for _, tag := range tags {
		if slices.Contains(GetPreserveTags(), tag) {
			return true
		}
	}
	return false
}

// GetBackendConfig assembles the backend client configuration
func GetBackendConfig() backend.Config {
	return backend.Config{
		BaseURL: GetBackendURL(),
		APIKey:  GetAPIKey(),
		Timeout: GetBackendTimeout(),
	}
}

// GetCredentials returns the configured CLI credentials
func GetCredentials() backend.Credentials {
	return backend.Credentials{
		AuthToken:  viper.GetString("auth.token"),
		OrgContext: viper.GetString("auth.org_context"),
	}
}
