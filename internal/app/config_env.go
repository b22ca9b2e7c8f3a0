package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables that are
// set. It runs after the config file and before explicit flags, so env sits
// between the two in precedence.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	setString := func(dst *string, envKey string) {
		if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
			*dst = v
		}
	}
	setString(&cfg.HFToken, "HF_TOKEN")
	setString(&cfg.HFEndpoint, "HF_ENDPOINT")
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY")
	setString(&cfg.Backend, "SHORTLY_BACKEND")
	setString(&cfg.CacheDir, "CACHE_DIR")
	setString(&cfg.ChromePath, "CHROME_PATH")

	if s := strings.TrimSpace(os.Getenv("SHORTLY_SENTENCES")); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			cfg.Sentences = n
		}
	}

	setDuration := func(dst *time.Duration, envKey string) {
		if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				*dst = d
			}
		}
	}
	setDuration(&cfg.CacheMaxAge, "CACHE_MAX_AGE")
	setDuration(&cfg.RemoteTimeout, "REMOTE_TIMEOUT")

	// Booleans override when env present and truthy/falsey
	setBool := func(dst *bool, envKey string) {
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
			switch s {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			}
		}
	}
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.Render, "RENDER")
	setBool(&cfg.IgnoreRobots, "ROBOTS_IGNORE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	if s := strings.ToLower(strings.TrimSpace(os.Getenv("SSL_VERIFY"))); s == "false" || s == "0" || s == "no" {
		cfg.SkipTLSVerify = true
	}
}
