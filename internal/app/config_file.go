package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every ValidateConfig failure.
var ErrInvalidConfig = errors.New("invalid config")

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Sentences int `yaml:"sentences" json:"sentences"`

	Min struct {
		LocalChars  int `yaml:"localChars" json:"localChars"`
		RemoteChars int `yaml:"remoteChars" json:"remoteChars"`
	} `yaml:"min" json:"min"`

	Remote struct {
		Backend string   `yaml:"backend" json:"backend"`
		Timeout duration `yaml:"timeout" json:"timeout"`
	} `yaml:"remote" json:"remote"`

	HuggingFace struct {
		Token    string `yaml:"token" json:"token"`
		Endpoint string `yaml:"endpoint" json:"endpoint"`
	} `yaml:"huggingface" json:"huggingface"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Fetch struct {
		UserAgent    string   `yaml:"ua" json:"ua"`
		Timeout      duration `yaml:"timeout" json:"timeout"`
		Render       bool     `yaml:"render" json:"render"`
		ChromePath   string   `yaml:"chromePath" json:"chromePath"`
		IgnoreRobots bool     `yaml:"ignoreRobots" json:"ignoreRobots"`
	} `yaml:"fetch" json:"fetch"`

	Output struct {
		Export string `yaml:"export" json:"export"`
		PDF    string `yaml:"pdf" json:"pdf"`
	} `yaml:"output" json:"output"`

	Cache struct {
		Dir         string   `yaml:"dir" json:"dir"`
		MaxAge      duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool     `yaml:"clear" json:"clear"`
		StrictPerms bool     `yaml:"strictPerms" json:"strictPerms"`
		Disable     bool     `yaml:"disable" json:"disable"`
	} `yaml:"cache" json:"cache"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// duration accepts "90s" style strings in both YAML and JSON.
type duration time.Duration

func (d *duration) set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

func (d *duration) UnmarshalYAML(n *yaml.Node) error { return d.set(n.Value) }

func (d *duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.set(s)
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value present in fc onto cfg. It runs on
// top of DefaultConfig, before env and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setDur := func(dst *time.Duration, v duration) {
		if v != 0 {
			*dst = time.Duration(v)
		}
	}

	setInt(&cfg.Sentences, fc.Sentences)
	setInt(&cfg.MinLocalChars, fc.Min.LocalChars)
	setInt(&cfg.MinRemoteChars, fc.Min.RemoteChars)

	setString(&cfg.Backend, fc.Remote.Backend)
	setDur(&cfg.RemoteTimeout, fc.Remote.Timeout)
	setString(&cfg.HFToken, fc.HuggingFace.Token)
	setString(&cfg.HFEndpoint, fc.HuggingFace.Endpoint)
	setString(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setString(&cfg.LLMModel, fc.LLM.Model)
	setString(&cfg.LLMAPIKey, fc.LLM.APIKey)

	setString(&cfg.UserAgent, fc.Fetch.UserAgent)
	setDur(&cfg.FetchTimeout, fc.Fetch.Timeout)
	setString(&cfg.ChromePath, fc.Fetch.ChromePath)
	if fc.Fetch.Render {
		cfg.Render = true
	}
	if fc.Fetch.IgnoreRobots {
		cfg.IgnoreRobots = true
	}

	setString(&cfg.ExportPath, fc.Output.Export)
	setString(&cfg.PDFPath, fc.Output.PDF)

	setString(&cfg.CacheDir, fc.Cache.Dir)
	setDur(&cfg.CacheMaxAge, fc.Cache.MaxAge)
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}
	if fc.Cache.Disable {
		cfg.NoCache = true
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig rejects negative limits and unknown backends.
func ValidateConfig(cfg Config) error {
	if cfg.MinLocalChars < 0 || cfg.MinRemoteChars < 0 {
		return fmt.Errorf("%w: negative minimum text length", ErrInvalidConfig)
	}
	if cfg.RemoteTimeout < 0 || cfg.FetchTimeout < 0 || cfg.CacheMaxAge < 0 {
		return fmt.Errorf("%w: negative durations are not allowed", ErrInvalidConfig)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendHuggingFace, BackendChat:
	default:
		return fmt.Errorf("%w: unknown backend %q (want %s or %s)", ErrInvalidConfig, cfg.Backend, BackendHuggingFace, BackendChat)
	}
	if cfg.UseRemote && strings.EqualFold(cfg.Backend, BackendChat) && strings.TrimSpace(cfg.LLMModel) == "" {
		return fmt.Errorf("%w: llm.model is required for the chat backend (or set LLM_MODEL)", ErrInvalidConfig)
	}
	if !cfg.Interactive && strings.TrimSpace(cfg.Target) == "" {
		return fmt.Errorf("%w: a target URL, file or \"-\" is required", ErrInvalidConfig)
	}
	return nil
}
