// Package settings loads the user's watch lists.
package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds the currencies and tickers shown on the home page.
type Settings struct {
	UserCurrencies []string `mapstructure:"user_currencies"`
	UserStocks     []string `mapstructure:"user_stocks"`
}

// Load reads a settings file. The format follows the file extension and
// defaults to JSON. Codes are trimmed and upper-cased; blanks are dropped.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetDefault("user_currencies", []string{})
	v.SetDefault("user_stocks", []string{})

	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	s.UserCurrencies = normalize(s.UserCurrencies)
	s.UserStocks = normalize(s.UserStocks)
	return s, nil
}

// File loads settings from a fixed path on every call, so edits are picked
// up without a restart.
type File struct {
	Path string
}

func (f File) Load(_ context.Context) (Settings, error) {
	return Load(f.Path)
}

// Static returns fixed settings.
type Static Settings

func (s Static) Load(_ context.Context) (Settings, error) {
	return Settings(s), nil
}

func normalize(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
