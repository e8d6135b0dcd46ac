package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const (
	EnvPrefix         = "REMINDME_"
	DefaultDir        = "~/.remindme"
	DefaultConfigPath = "~/.remindme/config.yaml"
)

type StoreConfig struct {
	File string `koanf:"file" yaml:"file"`
}

type DaemonConfig struct {
	Interval time.Duration `koanf:"interval" yaml:"interval"`
	Lock     string        `koanf:"lock" yaml:"lock"`
	Name     string        `koanf:"name" yaml:"name"` // executable base name matched by the process scan
}

type LogConfig struct {
	File    string `koanf:"file" yaml:"file"`
	History string `koanf:"history" yaml:"history"`
	Level   string `koanf:"level" yaml:"level"`
}

type NotifyConfig struct {
	Title   string        `koanf:"title" yaml:"title"`
	Desktop bool          `koanf:"desktop" yaml:"desktop"`
	Console bool          `koanf:"console" yaml:"console"`
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
	Rate    float64       `koanf:"rate" yaml:"rate"`
	Burst   int           `koanf:"burst" yaml:"burst"`
}

type ParserConfig struct {
	Hour int `koanf:"hour" yaml:"hour"`
}

type LLMConfig struct {
	Provider string `koanf:"provider" yaml:"provider,omitempty"`
	Key      string `koanf:"key" yaml:"key,omitempty"`
	URL      string `koanf:"url" yaml:"url,omitempty"`
	Model    string `koanf:"model" yaml:"model,omitempty"`
}

type Config struct {
	Dir    string       `koanf:"dir" yaml:"dir"`
	Store  StoreConfig  `koanf:"store" yaml:"store"`
	Daemon DaemonConfig `koanf:"daemon" yaml:"daemon"`
	Log    LogConfig    `koanf:"log" yaml:"log"`
	Notify NotifyConfig `koanf:"notify" yaml:"notify"`
	Parser ParserConfig `koanf:"parser" yaml:"parser"`
	LLM    LLMConfig    `koanf:"llm" yaml:"llm"`
}

func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"dir":        DefaultDir,
		"store.file": "reminders.json",

		"daemon.interval": "1s",
		"daemon.lock":     "notifier.lock",
		"daemon.name":     "remindme",

		"log.file":    "remindme.log",
		"log.history": "reminderHistory.log",
		"log.level":   "info",

		"notify.title":   "Reminder",
		"notify.desktop": true,
		"notify.console": true,
		"notify.timeout": "10s",
		"notify.rate":    2.0,
		"notify.burst":   5,

		"parser.hour": 9,

		"llm.provider": "",
		"llm.key":      "",
		"llm.url":      "",
		"llm.model":    "",
	}
}

func DefaultConfig() *Config {
	cfg, err := loadConfig("", false)
	if err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return cfg
}

// LoadConfig layers defaults, the YAML file at path (if it exists) and REMINDME_ environment
// variables. An empty path means DefaultConfigPath.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	return loadConfig(path, true)
}

func loadConfig(path string, withEnv bool) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		path = expandPath(path)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file: %w", err)
			}
		}
	}

	if withEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, fmt.Errorf("load env vars: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Dir = expandPath(cfg.Dir)

	return &cfg, nil
}

// envKey maps REMINDME_DAEMON_INTERVAL to daemon.interval.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

func (c *Config) Validate() error {
	if c.Dir == "" {
		return errors.New("dir is required")
	}
	if c.Daemon.Interval <= 0 {
		return errors.New("daemon.interval must be positive")
	}
	if c.Daemon.Name == "" {
		return errors.New("daemon.name is required")
	}
	if c.Notify.Timeout <= 0 {
		return errors.New("notify.timeout must be positive")
	}
	if c.Notify.Rate <= 0 || c.Notify.Burst <= 0 {
		return errors.New("notify.rate and notify.burst must be positive")
	}
	if c.Parser.Hour < 0 || c.Parser.Hour > 23 {
		return fmt.Errorf("parser.hour must be between 0 and 23, got %d", c.Parser.Hour)
	}
	switch c.LLM.Provider {
	case "":
	case "openai", "anthropic", "openrouter":
		if c.LLM.Model == "" {
			return fmt.Errorf("llm.model is required for provider %s", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unknown llm provider: %s (supported: openai, anthropic, openrouter)", c.LLM.Provider)
	}
	return nil
}

func (c *Config) StorePath() string   { return c.resolve(c.Store.File) }
func (c *Config) LockPath() string    { return c.resolve(c.Daemon.Lock) }
func (c *Config) LogPath() string     { return c.resolve(c.Log.File) }
func (c *Config) HistoryPath() string { return c.resolve(c.Log.History) }
func (c *Config) EnvPath() string     { return filepath.Join(c.Dir, ".env") }

func (c *Config) resolve(name string) string {
	name = expandPath(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dir, name)
}

// SaveConfig writes cfg as YAML to path and refuses to replace an existing file.
func SaveConfig(path string, cfg *Config) error {
	path = expandPath(path)

	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("config already exists: %s", path)
		}
		return fmt.Errorf("write config: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
