package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SSHSettings configures the wish server.
type SSHSettings struct {
	Address     string        `mapstructure:"address"`
	HostKey     string        `mapstructure:"host_key"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

// HTTPSettings configures the spectator API.
type HTTPSettings struct {
	Enabled      bool    `mapstructure:"enabled"`
	Address      string  `mapstructure:"address"`
	SnapshotRate float64 `mapstructure:"snapshot_rate"` // websocket frames per second
}

// Settings are the application-wide options. Level content lives in YAML
// level files, not here.
type Settings struct {
	DB         string       `mapstructure:"db"`
	TickMS     int          `mapstructure:"tick_ms"`
	Seed       int64        `mapstructure:"seed"`
	LogLevel   string       `mapstructure:"log_level"`
	LogFile    string       `mapstructure:"log_file"`
	LevelsDir  string       `mapstructure:"levels_dir"`
	Archetypes string       `mapstructure:"archetypes"`
	Difficulty string       `mapstructure:"difficulty"`
	Bell       bool         `mapstructure:"bell"`
	SSH        SSHSettings  `mapstructure:"ssh"`
	HTTP       HTTPSettings `mapstructure:"http"`
}

// TickInterval returns the simulation cadence.
func (s Settings) TickInterval() time.Duration {
	return time.Duration(s.TickMS) * time.Millisecond
}

// NewViper returns a viper instance with defaults, the SKYBATTLE_
// environment prefix and ~/.skybattle as the settings search path.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("db", "~/.skybattle/skybattle.db")
	v.SetDefault("tick_ms", 50)
	v.SetDefault("seed", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "~/.skybattle/skybattle.log")
	v.SetDefault("levels_dir", "")
	v.SetDefault("archetypes", "")
	v.SetDefault("difficulty", string(DifficultyNormal))
	v.SetDefault("bell", true)

	v.SetDefault("ssh.address", ":23234")
	v.SetDefault("ssh.host_key", "~/.skybattle/ssh_host_key")
	v.SetDefault("ssh.idle_timeout", 10*time.Minute)

	v.SetDefault("http.enabled", true)
	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.snapshot_rate", 10.0)

	v.SetEnvPrefix("SKYBATTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	if p := userPath(); p != "" {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	return v
}

// LoadSettings reads the settings file into v and decodes the result.
// With an explicit path the file must exist; otherwise a missing file
// leaves the defaults in place.
func LoadSettings(v *viper.Viper, path string) (Settings, error) {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("error reading settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("error decoding settings: %w", err)
	}
	if s.TickMS <= 0 {
		return Settings{}, fmt.Errorf("config: tick_ms must be positive, got %d", s.TickMS)
	}
	if _, err := ParseDifficulty(s.Difficulty); err != nil {
		return Settings{}, err
	}

	for _, p := range []*string{&s.DB, &s.LogFile, &s.LevelsDir, &s.Archetypes, &s.SSH.HostKey} {
		expanded, err := ExpandHome(*p)
		if err != nil {
			return Settings{}, err
		}
		*p = expanded
	}
	return s, nil
}
