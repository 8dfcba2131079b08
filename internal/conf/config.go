// Package conf defines the application settings and loads them with viper.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ThresholdSettings holds per-variant detection confidence thresholds.
// Offline batch analysis tolerates weaker detections than live video,
// and the one-shot capture pass demands the strongest.
type ThresholdSettings struct {
	File    float64 // offline batch analysis
	Video   float64 // live video feed
	Capture float64 // one-shot high-accuracy capture
}

// PlateNetSettings contains settings for the two-stage plate recognition model.
type PlateNetSettings struct {
	PlateModelPath string            // path to the plate detection model
	CharModelPath  string            // path to the character classification model
	Threads        int               // tflite interpreter thread count, 0 for default
	UseXNNPACK     bool              // enable the XNNPack delegate
	Thresholds     ThresholdSettings // per-variant plate detection thresholds
	OCRThreshold   float64           // character detection confidence threshold
	IoUThreshold   float64           // NMS overlap threshold
	CropPadding    float64           // padding fraction added around the plate crop
	GapRatio       float64           // gap-to-mean ratio for all-digit code/number split
}

// CaptureSettings holds the five capture-quality gate thresholds.
type CaptureSettings struct {
	MinConfidence         float64 // gate 1: minimum plate detection confidence
	MinPlateAreaFraction  float64 // gate 2: minimum box area / image area
	MaxCentreMoveFraction float64 // gate 3: maximum normalized centre displacement
	MaxAreaChangeFraction float64 // gate 4: maximum normalized area change
	RequiredStableFrames  int     // consecutive passing frames before capture
}

// StabilizerSettings holds cross-frame identity stabilizer settings.
type StabilizerSettings struct {
	ConfirmationThreshold int // consecutive observations before a plate is confirmed
}

// TelemetrySettings contains settings for the Prometheus telemetry endpoint.
type TelemetrySettings struct {
	Enabled bool   // true to enable Prometheus telemetry endpoint
	Listen  string // IP address and port to listen on
}

// SentrySettings contains settings for optional error telemetry.
type SentrySettings struct {
	Enabled bool   // true to enable Sentry error reporting
	DSN     string // Sentry project DSN
}

// RealtimeSettings contains settings for realtime video analysis.
type RealtimeSettings struct {
	MinInterval     time.Duration // minimum interval between admitted frames
	RetentionWindow time.Duration // how long a stale result may be re-reported
	ProcessingTime  bool          // report processing time for each frame
	Capture         CaptureSettings
	Stabilizer      StabilizerSettings
	Telemetry       TelemetrySettings
}

// LogSettings contains application logging settings.
type LogSettings struct {
	Enabled bool   // true to enable file logging
	Path    string // path to the log file
	Level   string // minimum log level: debug, info, warn, error
}

// MainSettings groups application-wide settings.
type MainSettings struct {
	Name string // name of this node, used in logs and telemetry
	Log  LogSettings
}

// Settings is the root configuration type.
type Settings struct {
	Debug    bool // true to enable debug logging
	Main     MainSettings
	PlateNet PlateNetSettings
	Realtime RealtimeSettings
	Sentry   SentrySettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into a validated Settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	settingsInstance = settings
	return settingsInstance, nil
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

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file found, defaults and flags apply.
	}
	return nil
}

// Setting returns the settings instance loaded by Load, or nil before that.
func Setting() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetDefaultConfigPaths returns the config search paths: current directory
// first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	configDir, err := os.UserConfigDir()
	if err == nil {
		paths = append(paths, filepath.Join(configDir, "platewatch"))
	}
	return paths, nil
}

// SaveAs writes the current settings to the given path as YAML.
func (s *Settings) SaveAs(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("error marshaling settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
