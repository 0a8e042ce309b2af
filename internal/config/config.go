package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// AppName names the config and state directories.
const AppName = "todo-tui"

// Defaults for the demo feed and the table.
const (
	DefaultFeedURL        = "https://jsonplaceholder.typicode.com/todos"
	DefaultTimeoutSeconds = 10
	DefaultInitialLimit   = 20
	DefaultToastSeconds   = 3
)

// Environment variables that override file settings.
const (
	EnvEndpoint = "TODO_TUI_ENDPOINT"
	EnvTimeout  = "TODO_TUI_TIMEOUT"
	EnvLimit    = "TODO_TUI_LIMIT"
	EnvLogLevel = "TODO_TUI_LOG_LEVEL"
	EnvLogFile  = "TODO_TUI_LOG_FILE"
	EnvStateDir = "TODO_TUI_STATE_DIR"
)

// State backends for saved UI state.
const (
	StateBackendJSON   = "json"
	StateBackendBadger = "badger"
)

// Config represents the application configuration
type Config struct {
	Feed         FeedConfig        `json:"feed" toml:"feed"`
	UI           UIConfig          `json:"ui" toml:"ui"`
	Theme        ThemeConfig       `json:"theme" toml:"theme"`
	KeyBindings  map[string]string `json:"keyBindings" toml:"keyBindings"`
	Log          LogConfig         `json:"log" toml:"log"`
	StatePath    string            `json:"statePath" toml:"statePath"`
	StateBackend string            `json:"stateBackend" toml:"stateBackend"`

	// ConfigPath is the user config file that was merged, if any.
	ConfigPath string `json:"-" toml:"-"`
}

// FeedConfig locates the remote task list.
type FeedConfig struct {
	URL            string `json:"url" toml:"url"`
	TimeoutSeconds int    `json:"timeoutSeconds" toml:"timeoutSeconds"`
}

// Timeout returns the per-request timeout.
func (f FeedConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// UIConfig defines table and notification behavior.
type UIConfig struct {
	// InitialLimit caps the rows shown right after loading; -1 shows everything.
	InitialLimit  int    `json:"initialLimit" toml:"initialLimit"`
	ToastSeconds  int    `json:"toastSeconds" toml:"toastSeconds"`
	DefaultFilter string `json:"defaultFilter" toml:"defaultFilter"`
}

// ToastDuration returns how long notifications stay on screen.
func (u UIConfig) ToastDuration() time.Duration {
	return time.Duration(u.ToastSeconds) * time.Second
}

// ThemeConfig defines color and styling options
type ThemeConfig struct {
	PrimaryColor   string `json:"primaryColor" toml:"primaryColor"`
	SecondaryColor string `json:"secondaryColor" toml:"secondaryColor"`
	AccentColor    string `json:"accentColor" toml:"accentColor"`
	SuccessColor   string `json:"successColor" toml:"successColor"`
	ErrorColor     string `json:"errorColor" toml:"errorColor"`
	WarningColor   string `json:"warningColor" toml:"warningColor"`
}

// LogConfig controls the log sink.
type LogConfig struct {
	Level  string `json:"level" toml:"level"`
	Format string `json:"format" toml:"format"`
	Path   string `json:"path" toml:"path"`
}

// Load builds the configuration: defaults, then configs/default.json, then the
// user config file, then .env and the environment. An explicit path must exist;
// otherwise the user config directory is searched for config.json or config.toml.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	defaultPath := filepath.Join("configs", "default.json")
	if _, err := os.Stat(defaultPath); err == nil {
		if err := mergeConfigFile(cfg, defaultPath); err != nil {
			return nil, fmt.Errorf("failed to load default config: %w", err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	} else {
		path = findUserConfig()
	}
	if path != "" {
		if err := mergeConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg.ConfigPath = path
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.fillPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no sensible fallback.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Feed.URL) == "" {
		return errors.New("feed url is empty")
	}
	if c.Feed.TimeoutSeconds <= 0 {
		return fmt.Errorf("feed timeout must be positive, got %d", c.Feed.TimeoutSeconds)
	}
	switch c.StateBackend {
	case StateBackendJSON, StateBackendBadger:
	default:
		return fmt.Errorf("unknown state backend %q", c.StateBackend)
	}
	return nil
}

// mergeConfigFile loads a JSON or TOML file and merges its non-zero values into target
func mergeConfigFile(target *Config, path string) error {
	var partial Config

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &partial); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, &partial); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if partial.Feed.URL != "" {
		target.Feed.URL = partial.Feed.URL
	}
	if partial.Feed.TimeoutSeconds > 0 {
		target.Feed.TimeoutSeconds = partial.Feed.TimeoutSeconds
	}

	if partial.UI.InitialLimit != 0 {
		target.UI.InitialLimit = partial.UI.InitialLimit
	}
	if partial.UI.ToastSeconds > 0 {
		target.UI.ToastSeconds = partial.UI.ToastSeconds
	}
	if partial.UI.DefaultFilter != "" {
		target.UI.DefaultFilter = partial.UI.DefaultFilter
	}

	if target.KeyBindings == nil && len(partial.KeyBindings) > 0 {
		target.KeyBindings = make(map[string]string, len(partial.KeyBindings))
	}
	for key, value := range partial.KeyBindings {
		target.KeyBindings[key] = value
	}

	if partial.Theme.PrimaryColor != "" {
		target.Theme.PrimaryColor = partial.Theme.PrimaryColor
	}
	if partial.Theme.SecondaryColor != "" {
		target.Theme.SecondaryColor = partial.Theme.SecondaryColor
	}
	if partial.Theme.AccentColor != "" {
		target.Theme.AccentColor = partial.Theme.AccentColor
	}
	if partial.Theme.SuccessColor != "" {
		target.Theme.SuccessColor = partial.Theme.SuccessColor
	}
	if partial.Theme.ErrorColor != "" {
		target.Theme.ErrorColor = partial.Theme.ErrorColor
	}
	if partial.Theme.WarningColor != "" {
		target.Theme.WarningColor = partial.Theme.WarningColor
	}

	if partial.Log.Level != "" {
		target.Log.Level = partial.Log.Level
	}
	if partial.Log.Format != "" {
		target.Log.Format = partial.Log.Format
	}
	if partial.Log.Path != "" {
		target.Log.Path = partial.Log.Path
	}

	if partial.StatePath != "" {
		target.StatePath = partial.StatePath
	}
	if partial.StateBackend != "" {
		target.StateBackend = partial.StateBackend
	}

	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		cfg.Feed.TimeoutSeconds = secs
	}
	if v := os.Getenv(EnvLimit); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvLimit, err)
		}
		cfg.UI.InitialLimit = limit
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Log.Path = v
	}
	return nil
}

// fillPaths derives state and log locations that were not configured.
func (c *Config) fillPaths() {
	dir := StateDir()
	if c.StatePath == "" {
		if c.StateBackend == StateBackendBadger {
			c.StatePath = filepath.Join(dir, "state")
		} else {
			c.StatePath = filepath.Join(dir, "state.json")
		}
	}
	if c.Log.Path == "" {
		c.Log.Path = filepath.Join(dir, AppName+".log")
	}
}

// findUserConfig returns the first config file present in ConfigDir.
func findUserConfig() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	for _, name := range []string{"config.json", "config.toml"} {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// ConfigDir returns the directory searched for user config files.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, AppName)
}

// StateDir returns the directory holding saved UI state and logs.
func StateDir() string {
	if v := os.Getenv(EnvStateDir); v != "" {
		return v
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(base, AppName)
}

// defaultConfig returns the default configuration
func defaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			URL:            DefaultFeedURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		UI: UIConfig{
			InitialLimit:  DefaultInitialLimit,
			ToastSeconds:  DefaultToastSeconds,
			DefaultFilter: "all",
		},
		KeyBindings: map[string]string{
			"quit":    "q",
			"help":    "?",
			"add":     "a",
			"edit":    "e",
			"delete":  "x",
			"search":  "/",
			"filter":  "f",
			"refresh": "r",
		},
		Theme: ThemeConfig{
			PrimaryColor:   "#7d56f4",
			SecondaryColor: "#EE6FF8",
			AccentColor:    "#F780E2",
			SuccessColor:   "#04B575",
			ErrorColor:     "#EF4146",
			WarningColor:   "#FF9800",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		StateBackend: StateBackendJSON,
	}
}

// Default returns the built-in configuration with derived paths filled in.
func Default() *Config {
	cfg := defaultConfig()
	cfg.fillPaths()
	return cfg
}

// ConfigManager handles configuration with file watching capabilities
type ConfigManager struct {
	config     *Config
	path       string
	overrides  []func(*Config)
	watcher    *Watcher
	reloadChan chan struct{}
	mu         sync.RWMutex
}

// NewConfigManager loads the configuration. Overrides (typically command-line
// flags) are applied after every load so reloads do not discard them.
func NewConfigManager(path string, overrides ...func(*Config)) (*ConfigManager, error) {
	cm := &ConfigManager{
		path:       path,
		overrides:  overrides,
		reloadChan: make(chan struct{}, 1),
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm, nil
}

func (cm *ConfigManager) load() (*Config, error) {
	cfg, err := Load(cm.path)
	if err != nil {
		return nil, err
	}
	for _, apply := range cm.overrides {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfig returns the current configuration (thread-safe)
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// Reload loads the configuration from disk
func (cm *ConfigManager) Reload() error {
	cfg, err := cm.load()
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	cm.mu.Lock()
	cm.config = cfg
	cm.mu.Unlock()
	return nil
}

// watchPaths lists the files whose changes trigger a reload.
func (cm *ConfigManager) watchPaths() []string {
	var paths []string
	defaultPath := filepath.Join("configs", "default.json")
	if _, err := os.Stat(defaultPath); err == nil {
		paths = append(paths, defaultPath)
	}
	if p := cm.GetConfig().ConfigPath; p != "" {
		paths = append(paths, p)
	}
	return paths
}

// StartWatcher begins watching config files for changes with a 300ms debounce.
// onError receives reload and watcher failures; it may be nil.
func (cm *ConfigManager) StartWatcher(ctx context.Context, onError func(error)) error {
	paths := cm.watchPaths()

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.watcher != nil {
		return fmt.Errorf("watcher already started")
	}
	if len(paths) == 0 {
		return fmt.Errorf("no config paths to watch")
	}

	watcher, err := NewWatcher(ctx, paths...)
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Start(300 * time.Millisecond); err != nil {
		_ = watcher.Stop()
		return fmt.Errorf("failed to start config watcher: %w", err)
	}
	cm.watcher = watcher

	go cm.handleConfigChanges(ctx, watcher, onError)
	return nil
}

func (cm *ConfigManager) handleConfigChanges(ctx context.Context, w *Watcher, onError func(error)) {
	report := func(err error) {
		if onError != nil {
			onError(err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case _, ok := <-w.Events():
			if !ok {
				return
			}
			if err := cm.Reload(); err != nil {
				report(err)
				continue
			}
			select {
			case cm.reloadChan <- struct{}{}:
			default:
				// reload notification already pending
			}

		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			report(fmt.Errorf("config watcher: %w", err))
		}
	}
}

// StopWatcher stops the config file watcher if it's running
func (cm *ConfigManager) StopWatcher() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.watcher == nil {
		return nil
	}
	err := cm.watcher.Stop()
	cm.watcher = nil
	return err
}

// ReloadEvents returns a channel that signals when config has been reloaded
func (cm *ConfigManager) ReloadEvents() <-chan struct{} {
	return cm.reloadChan
}
