package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/vb3d-sim/pkg/logging"
	"github.com/oxygene76/vb3d-sim/pkg/scene"
)

// Config represents the application configuration
type Config struct {
	Scene  scene.Config `yaml:"scene" mapstructure:"scene"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ServerConfig contains settings for the scene API
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	// MaxMessageBytes bounds a single request body or websocket message.
	MaxMessageBytes int64 `yaml:"max_message_bytes" mapstructure:"max_message_bytes"`
	// MaxConcurrentRenders bounds renders in flight across all clients.
	MaxConcurrentRenders int `yaml:"max_concurrent_renders" mapstructure:"max_concurrent_renders"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

const (
	configName = "config"
	envPrefix  = "VB3D"
	homeSubdir = ".vb3d"
)

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Scene: scene.DefaultConfig(),
		Server: ServerConfig{
			Port:                 8080,
			AllowedOrigins:       []string{"*"},
			MaxMessageBytes:      1 << 16,
			MaxConcurrentRenders: 4,
		},
		Log: LogConfig{Level: "info"},
	}
}

// HomeDir returns the per-user configuration directory.
func HomeDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, homeSubdir)
}

// LoadConfig loads configuration from path, or from the standard search
// paths when path is empty. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(HomeDir())
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults registers every key of def with viper so that env overrides
// and partial files merge onto the defaults.
func setDefaults(v *viper.Viper, def *Config) {
	s := def.Scene
	v.SetDefault("scene.mode", string(s.Mode))
	v.SetDefault("scene.net", string(s.Net))
	v.SetDefault("scene.custom_net_height", s.CustomNetHeight)
	v.SetDefault("scene.dt", s.Dt)

	setVector(v, "scene.launch.start", s.Launch.Start.X, s.Launch.Start.Y, s.Launch.Start.Z)
	v.SetDefault("scene.launch.speed", s.Launch.Speed)
	v.SetDefault("scene.launch.elevation_deg", s.Launch.ElevationDeg)
	v.SetDefault("scene.launch.azimuth_deg", s.Launch.AzimuthDeg)
	v.SetDefault("scene.launch.t_end", s.Launch.TEnd)

	setVector(v, "scene.set.release", s.Set.Release.X, s.Set.Release.Y, s.Set.Release.Z)
	setVector(v, "scene.set.contact", s.Set.Contact.X, s.Set.Contact.Y, s.Set.Contact.Z)
	v.SetDefault("scene.set.t_hit", s.Set.THit)
	v.SetDefault("scene.set.t_after", s.Set.TAfter)

	v.SetDefault("scene.envelope.enabled", s.Envelope.Enabled)
	v.SetDefault("scene.envelope.nx", s.Envelope.NX)
	v.SetDefault("scene.envelope.ny", s.Envelope.NY)
	v.SetDefault("scene.envelope.k", s.Envelope.K)
	v.SetDefault("scene.envelope.max_paths", s.Envelope.MaxPaths)

	v.SetDefault("scene.show.cloud", s.Show.Cloud)
	v.SetDefault("scene.show.crossings", s.Show.Crossings)
	v.SetDefault("scene.show.paths", s.Show.Paths)
	v.SetDefault("scene.show.tail", s.Show.Tail)

	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.allowed_origins", def.Server.AllowedOrigins)
	v.SetDefault("server.max_message_bytes", def.Server.MaxMessageBytes)
	v.SetDefault("server.max_concurrent_renders", def.Server.MaxConcurrentRenders)
	v.SetDefault("log.level", def.Log.Level)
}

func setVector(v *viper.Viper, key string, x, y, z float64) {
	v.SetDefault(key+".x", x)
	v.SetDefault(key+".y", y)
	v.SetDefault(key+".z", z)
}

// SaveConfig saves configuration to path, or to the home config file when
// path is empty. It returns the path written.
func SaveConfig(config *Config, path string) (string, error) {
	if path == "" {
		path = filepath.Join(HomeDir(), configName+".yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if err := config.Scene.Validate(); err != nil {
		return err
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port must be 1..65535, got %d", config.Server.Port)
	}

	if config.Server.MaxMessageBytes <= 0 {
		return fmt.Errorf("max message size must be positive")
	}

	if config.Server.MaxConcurrentRenders <= 0 {
		return fmt.Errorf("max concurrent renders must be positive, got %d", config.Server.MaxConcurrentRenders)
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		return err
	}

	return nil
}
