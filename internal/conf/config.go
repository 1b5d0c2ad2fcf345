// Package conf loads and holds the application configuration. Configuration
// is read from a YAML file with viper, with environment variable overrides
// using the SOUNDGUARD_ prefix.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/soundguard/soundguard-go/internal/errors"
)

// Settings contains all runtime configuration for the application.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-"` // Version from build
	BuildDate string `yaml:"-"` // Build date from build

	Main struct {
		Name string // name of this SoundGuard node, stamped on log records
	}

	ML MLConfig // external ML inference service

	Analysis AnalysisConfig // analysis pipeline settings

	WebServer struct {
		Debug   bool   // true to enable echo debug logging
		Enabled bool   // true to enable web server
		Port    string // port for web server
	}

	Security SecurityConfig // JWT and password policy

	Output struct {
		SQLite struct {
			Enabled bool   // true to enable sqlite output
			Path    string // path to sqlite database
		}

		MySQL struct {
			Enabled  bool   // true to enable mysql output
			Username string // mysql database username
			Password string // mysql database user password
			Database string // mysql database name
			Host     string // mysql database host
			Port     string // mysql database port
		}
	}

	Realtime struct {
		MQTT MQTTConfig // danger event publishing

		Telemetry struct {
			Enabled bool // true to expose prometheus metrics endpoint
		}
	}

	Notification NotificationConfig // push delivery of danger alerts

	Storage struct {
		UploadPath string // directory for uploaded audio clips
	}
}

// MLConfig describes the external classification service.
type MLConfig struct {
	URL        string        // base URL, e.g. http://localhost:5000
	Timeout    time.Duration // per-request timeout
	MaxRetries int           // retry attempts for transient failures
}

// AnalysisConfig holds orchestration settings for the analysis pipeline.
// The danger policy thresholds themselves are compiled in, not configurable;
// see internal/analysis.
type AnalysisConfig struct {
	DefaultZone    string // zone stamped on events when the request has none
	DefaultArea    string // area stamped on events when the request has none
	FanoutWorkers  int    // max concurrent per-user notification writes
	DefaultSampleRate int // sample rate assumed when the request has none
}

// SecurityConfig holds authentication settings.
type SecurityConfig struct {
	JWTSecret   string        // HMAC signing secret, generated if empty
	TokenExpiry time.Duration // JWT lifetime
}

// MQTTConfig holds the optional MQTT side channel settings.
type MQTTConfig struct {
	Enabled  bool   // true to publish danger events to MQTT
	Broker   string // broker URL, e.g. tcp://localhost:1883
	Topic    string // topic to publish danger events to
	Username string // MQTT username
	Password string // MQTT password
	Retain   bool   // true to set the retained flag on published messages
}

// NotificationConfig holds settings for the notification service.
type NotificationConfig struct {
	Debug    bool     // enable debug logging for the notification service
	PushURLs []string // shoutrrr URLs that receive danger alerts
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into a Settings struct.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "unmarshal").
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()
	return settings, nil
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("soundguard")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file found, run on defaults and environment only.
	}

	if viper.GetString("security.jwtsecret") == "" {
		viper.Set("security.jwtsecret", GenerateRandomSecret())
	}

	return nil
}

// Setting returns the current settings instance, loading them on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				panic(fmt.Sprintf("error loading settings: %v", err))
			}
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetDefaultConfigPaths returns the list of directories searched for the
// config file, in priority order.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}
	return []string{
		".",
		filepath.Join(homeDir, ".config", "soundguard"),
		"/etc/soundguard",
	}, nil
}

// GetBasePath expands a possibly relative path against the working directory
// and ensures the directory exists.
func GetBasePath(path string) string {
	basePath := viper.GetString("main.basepath")
	if basePath == "" {
		basePath = "."
	}
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(basePath, path)
	}
	if path == "" {
		path = basePath
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		fmt.Printf("error creating directory %s: %v\n", path, err)
	}
	return path
}
