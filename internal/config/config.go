// Package config loads application settings and the source manifest.
// Settings come from flags, environment (TABLEWARDEN_ prefix, with a
// .env file honored), and an optional YAML config file; the list of
// scraped sources lives in its own manifest file alongside the
// notification settings an operator edits.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tablewarden/tablewarden/pkg/constants"
	"github.com/tablewarden/tablewarden/pkg/errors"
	"github.com/tablewarden/tablewarden/pkg/logging"
)

// Source is one named data feed: a page whose tables are scraped and
// reconciled independently of every other source.
type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Schedule string `yaml:"schedule,omitempty"` // cron spec; empty means manual/serve-default only
	Selector string `yaml:"selector,omitempty"` // CSS-ish filter, defaults to all tables
}

// SMTP holds outbound mail settings. Notifications are disabled unless
// username, password, and at least one recipient are present.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// Manifest is the operator-edited sources file.
type Manifest struct {
	SenderName  string   `yaml:"sender_name,omitempty"`
	MailingList []string `yaml:"mailing_list,omitempty"`
	Sources     []Source `yaml:"sources"`
}

// Config is the fully resolved application configuration.
type Config struct {
	DataDir     string
	SourcesFile string
	Listen      string
	LogLevel    string
	LogFormat   string
	LockWait    bool

	SMTP        SMTP
	SenderName  string
	MailingList []string
	Sources     []Source
}

// Load resolves configuration. configFile may be empty; the sources
// manifest path defaults to sources.yaml in the working directory.
func Load(configFile string) (*Config, error) {
	// .env is a convenience for local runs; absence is fine.
	if err := godotenv.Load(); err == nil {
		logging.Debug().Msg("loaded environment from .env")
	}

	v := viper.New()
	v.SetEnvPrefix("TABLEWARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", "data")
	v.SetDefault("sources_file", "sources.yaml")
	v.SetDefault("listen", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "auto")
	v.SetDefault("lock_wait", false)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)

	// The original deployment configured mail through bare SMTP_* vars;
	// keep honoring them.
	_ = v.BindEnv("smtp.host", "TABLEWARDEN_SMTP_HOST", "SMTP_SERVER")
	_ = v.BindEnv("smtp.port", "TABLEWARDEN_SMTP_PORT", "SMTP_PORT")
	_ = v.BindEnv("smtp.username", "TABLEWARDEN_SMTP_USERNAME", "SMTP_USERNAME")
	_ = v.BindEnv("smtp.password", "TABLEWARDEN_SMTP_PASSWORD", "SMTP_PASSWORD")
	_ = v.BindEnv("smtp.sender", "TABLEWARDEN_SMTP_SENDER", "SENDER_EMAIL")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &errors.ConfigError{Component: "config", Message: "cannot read config file", Err: err}
		}
	}

	cfg := &Config{
		DataDir:     v.GetString("data_dir"),
		SourcesFile: v.GetString("sources_file"),
		Listen:      v.GetString("listen"),
		LogLevel:    v.GetString("log_level"),
		LogFormat:   v.GetString("log_format"),
		LockWait:    v.GetBool("lock_wait"),
		SMTP: SMTP{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			Sender:   v.GetString("smtp.sender"),
		},
	}
	if cfg.SMTP.Sender == "" {
		cfg.SMTP.Sender = cfg.SMTP.Username
	}

	manifest, err := LoadManifest(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}
	cfg.SenderName = manifest.SenderName
	cfg.MailingList = manifest.MailingList
	cfg.Sources = manifest.Sources

	return cfg, nil
}

// LoadManifest reads and validates the sources manifest. An absent file
// yields an empty manifest, not an error: a fresh deployment has no
// sources yet.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, &errors.ParseError{Format: "yaml", File: path, Message: "malformed sources manifest", Err: err}
	}

	seen := make(map[string]struct{}, len(manifest.Sources))
	for _, src := range manifest.Sources {
		if src.Name == "" || src.URL == "" {
			return nil, &errors.ConfigError{
				Component: "sources",
				Message:   "every source needs a name and a url",
			}
		}
		if _, dup := seen[src.Name]; dup {
			return nil, &errors.ConfigError{
				Component: "sources",
				Message:   "duplicate source name " + src.Name,
			}
		}
		seen[src.Name] = struct{}{}
	}
	return &manifest, nil
}

// SaveManifest writes the manifest back, preserving the temp-then-rename
// discipline used for metadata.
func SaveManifest(path string, manifest *Manifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return &errors.ConfigError{Component: "sources", Message: "cannot serialize manifest", Err: err}
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "sources-*.yaml")
	if err != nil {
		return errors.WrapIO("write", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapIO("write", path, err)
	}
	if err := os.Chmod(tmpName, constants.FilePermissions); err != nil {
		os.Remove(tmpName)
		return errors.WrapIO("write", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Source returns the named source from the config, if present.
func (c *Config) Source(name string) (Source, bool) {
	for _, src := range c.Sources {
		if src.Name == name {
			return src, true
		}
	}
	return Source{}, false
}
