/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the per-user
// config directory, merged over defaults and overridden by ANN_* environment
// variables. The database password never touches the file; it lives in the OS
// keychain.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

type StorageConfig struct {
	Driver string `yaml:"driver"` // "sqlite" | "pgx"
	Path   string `yaml:"path"`   // sqlite database file, defaults to <dir>/database.db
	DSN    string `yaml:"dsn"`    // pgx connection string without password
}

type ImportConfig struct {
	MaxEdge int `yaml:"max_edge"`
	Quality int `yaml:"quality"` // JPEG quality 1..100
}

// Colors are hex strings such as "#808080".
type Colors struct {
	Normal    string `yaml:"normal"`
	Permanent string `yaml:"permanent"`
	Selected  string `yaml:"selected"`
	Marker    string `yaml:"marker"`
	Halo      string `yaml:"halo"`
}

type RenderConfig struct {
	FontFamily string `yaml:"font_family"`
	FontFile   string `yaml:"font_file"`
	Colors     Colors `yaml:"colors"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Storage       StorageConfig `yaml:"storage"`
	Import        ImportConfig  `yaml:"import"`
	Render        RenderConfig  `yaml:"render"`
	Logging       LoggingConfig `yaml:"logging"`
}

func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Storage:       StorageConfig{Driver: "sqlite"},
		Import:        ImportConfig{MaxEdge: 2000, Quality: 100},
		Render: RenderConfig{
			FontFamily: "Go",
			Colors: Colors{
				Normal:    "#000000",
				Permanent: "#808080",
				Selected:  "#c50f1f",
				Marker:    "#ff0000",
				Halo:      "#ffffff",
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigDir = "ANN_CONFIG_DIR"
	EnvDBDriver  = "ANN_DB_DRIVER"
	EnvDBPath    = "ANN_DB_PATH"
	EnvDBDSN     = "ANN_DB_DSN"
	EnvMaxEdge   = "ANN_IMPORT_MAX_EDGE"
	EnvFontFile  = "ANN_FONT_FILE"
	EnvLogLevel  = "ANN_LOG_LEVEL"
	EnvLogFormat = "ANN_LOG_FORMAT"
	EnvLogSource = "ANN_LOG_SOURCE"
	EnvLogFile   = "ANN_LOG_FILE"
)

const (
	keyringService  = "Annotator"
	keyringPassword = "db_password"
)

// TokenStore abstracts the OS keychain so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var tokenStore TokenStore = osKeyring{}

// Dir returns the per-user application directory holding config, database and
// crash reports. ANN_CONFIG_DIR overrides it.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Annotator")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Annotator")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "annotator")
		} else if home := os.Getenv("HOME"); home != "" {
			base = filepath.Join(home, ".config", "annotator")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file (if present), applies defaults and environment
// overrides. The database password is read from the keychain and returned
// separately; a missing entry is not an error.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, "", fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(filepath.Dir(path), "database.db")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, "", err
	}
	// A missing entry or an unavailable keychain (headless) yields no password.
	pw, err := tokenStore.Get(keyringService, keyringPassword)
	if err != nil {
		pw = ""
	}
	return cfg, pw, nil
}

// Save writes cfg and stores password in the keychain when non-empty.
func Save(cfg AppConfig, password string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		if err := tokenStore.Set(keyringService, keyringPassword, password); err != nil {
			return fmt.Errorf("store password: %w", err)
		}
	}
	return nil
}

// Validate checks enumerations, ranges and colours.
func (c AppConfig) Validate() error {
	switch c.Storage.Driver {
	case "sqlite":
	case "pgx":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return errors.New("storage.dsn is required for the pgx driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Import.MaxEdge <= 0 {
		return fmt.Errorf("import.max_edge must be positive, got %d", c.Import.MaxEdge)
	}
	if c.Import.Quality < 1 || c.Import.Quality > 100 {
		return fmt.Errorf("import.quality must be within 1..100, got %d", c.Import.Quality)
	}
	for name, hex := range map[string]string{
		"normal":    c.Render.Colors.Normal,
		"permanent": c.Render.Colors.Permanent,
		"selected":  c.Render.Colors.Selected,
		"marker":    c.Render.Colors.Marker,
		"halo":      c.Render.Colors.Halo,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("render.colors.%s: %q is not a hex colour", name, hex)
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	setStr(&dst.Storage.Driver, strings.ToLower(src.Storage.Driver))
	setStr(&dst.Storage.Path, src.Storage.Path)
	setStr(&dst.Storage.DSN, src.Storage.DSN)
	if src.Import.MaxEdge != 0 {
		dst.Import.MaxEdge = src.Import.MaxEdge
	}
	if src.Import.Quality != 0 {
		dst.Import.Quality = src.Import.Quality
	}
	setStr(&dst.Render.FontFamily, src.Render.FontFamily)
	setStr(&dst.Render.FontFile, src.Render.FontFile)
	setStr(&dst.Render.Colors.Normal, src.Render.Colors.Normal)
	setStr(&dst.Render.Colors.Permanent, src.Render.Colors.Permanent)
	setStr(&dst.Render.Colors.Selected, src.Render.Colors.Selected)
	setStr(&dst.Render.Colors.Marker, src.Render.Colors.Marker)
	setStr(&dst.Render.Colors.Halo, src.Render.Colors.Halo)
	setStr(&dst.Logging.Level, strings.ToLower(src.Logging.Level))
	setStr(&dst.Logging.Format, strings.ToLower(src.Logging.Format))
	dst.Logging.Source = src.Logging.Source
	setStr(&dst.Logging.File, src.Logging.File)
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	env := func(k string) string { return strings.TrimSpace(os.Getenv(k)) }
	setStr(&cfg.Storage.Driver, strings.ToLower(env(EnvDBDriver)))
	setStr(&cfg.Storage.Path, env(EnvDBPath))
	setStr(&cfg.Storage.DSN, env(EnvDBDSN))
	if v := env(EnvMaxEdge); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Import.MaxEdge = n
		}
	}
	setStr(&cfg.Render.FontFile, env(EnvFontFile))
	setStr(&cfg.Logging.Level, strings.ToLower(env(EnvLogLevel)))
	setStr(&cfg.Logging.Format, strings.ToLower(env(EnvLogFormat)))
	if v := env(EnvLogSource); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	setStr(&cfg.Logging.File, env(EnvLogFile))
}

// EnvOverrideFor returns the env var overriding a dotted config key, if set.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"storage.driver":   EnvDBDriver,
		"storage.path":     EnvDBPath,
		"storage.dsn":      EnvDBDSN,
		"import.max_edge":  EnvMaxEdge,
		"render.font_file": EnvFontFile,
		"logging.level":    EnvLogLevel,
		"logging.format":   EnvLogFormat,
		"logging.source":   EnvLogSource,
		"logging.file":     EnvLogFile,
	}
	name, ok := names[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// ClearPassword removes the stored database password; absence is not an error.
func ClearPassword() error {
	err := tokenStore.Delete(keyringService, keyringPassword)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
