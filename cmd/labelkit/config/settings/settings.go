package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Settings are runtime parameters of the command line tool.
type Settings struct {
	// timeout of each request to the server
	Timeout time.Duration `mapstructure:"timeout"`

	// one of logrus levels: "debug", "info", "warn", ...
	LogLevel string `mapstructure:"loglevel"`

	// override of the api root of the profile
	ApiRoot string `mapstructure:"api_root"`

	// override of the auth token of the profile
	Token string `mapstructure:"token"`
}

const EnvPrefix = "LABELKIT"

// DefaultPath is "~/.labelkit/settings.yaml"
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".labelkit", "settings.yaml"), nil
}

// Load reads settings from the yaml file at path (if exists) and
// environment variables LABELKIT_*, in increasing priority.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetDefault("timeout", "30s")
	v.SetDefault("loglevel", "info")
	v.SetDefault("api_root", "")
	v.SetDefault("token", "")

	v.SetEnvPrefix(EnvPrefix)
	for _, key := range []string{"timeout", "loglevel", "api_root", "token"} {
		if err := v.BindEnv(key); err != nil {
			return Settings{}, err
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return Settings{}, fmt.Errorf("reading settings at %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Settings{}, err
		}
	}

	s := Settings{}
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parsing settings: %w", err)
	}
	if s.Timeout < 0 {
		return Settings{}, fmt.Errorf("timeout should not be negative: %s", s.Timeout)
	}
	if _, err := s.Level(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Level() (logrus.Level, error) {
	return logrus.ParseLevel(s.LogLevel)
}
