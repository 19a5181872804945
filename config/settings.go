package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"lunargen/core"
)

// DefaultFiles are the settings files looked up, in order, when no explicit
// path is given. JSON is valid YAML so both go through the same decoder.
var DefaultFiles = []string{"settings.yaml", "settings.yml", "settings.json"}

type Settings struct {
	Generation core.GenerationParams `yaml:"generation" json:"generation"`
	Server     ServerSettings        `yaml:"server" json:"server"`
	Cache      CacheSettings         `yaml:"cache" json:"cache"`
	Viewer     ViewerSettings        `yaml:"viewer" json:"viewer"`
	LogLevel   string                `yaml:"logLevel" json:"logLevel"`
}

type ServerSettings struct {
	Port        int           `yaml:"port" json:"port"`
	ReadTimeout time.Duration `yaml:"readTimeout" json:"readTimeout"`
	JSONLogs    bool          `yaml:"jsonLogs" json:"jsonLogs"`
	MaxSegments int           `yaml:"maxSegments" json:"maxSegments"` // Per-request segment cap, 0 for none
}

type CacheSettings struct {
	Size          int           `yaml:"size" json:"size"`
	RedisAddress  string        `yaml:"redisAddress" json:"redisAddress"`
	RedisPassword string        `yaml:"redisPassword" json:"redisPassword"`
	RedisDB       int           `yaml:"redisDB" json:"redisDB"`
	TTL           time.Duration `yaml:"ttl" json:"ttl"`
}

type ViewerSettings struct {
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	Color  string `yaml:"color" json:"color"` // Surface colour as #rrggbb
}

// Defaults returns the settings used when no file overrides them
func Defaults() Settings {
	return Settings{
		Generation: core.DefaultParams(),
		Server: ServerSettings{
			Port:        8080,
			ReadTimeout: 10 * time.Second,
			MaxSegments: 1024,
		},
		Cache: CacheSettings{
			Size: 64,
			TTL:  time.Hour,
		},
		Viewer: ViewerSettings{
			Width:  1280,
			Height: 720,
			Color:  "#4a90e2",
		},
		LogLevel: "info",
	}
}

// Load reads settings from path on top of the defaults. An empty path tries
// DefaultFiles in the working directory; finding none of them is not an
// error. The second return value is the file actually read, if any.
func Load(path string) (Settings, string, error) {
	settings := Defaults()

	if path == "" {
		for _, candidate := range DefaultFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return settings, "", nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, "", fmt.Errorf("error reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, "", fmt.Errorf("error parsing %s: %w", filepath.Base(path), err)
	}
	if err := settings.Validate(); err != nil {
		return settings, "", fmt.Errorf("invalid settings in %s: %w", filepath.Base(path), err)
	}

	return settings, path, nil
}

// Validate checks the loaded settings
func (s Settings) Validate() error {
	var errs []error
	if err := s.Generation.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.Server.Port < 0 || s.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: out of range (got %d)", s.Server.Port))
	}
	if s.Server.MaxSegments < 0 {
		errs = append(errs, fmt.Errorf("server.maxSegments: must be >= 0 (got %d)", s.Server.MaxSegments))
	}
	if s.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size: must be >= 0 (got %d)", s.Cache.Size))
	}
	return errors.Join(errs...)
}
