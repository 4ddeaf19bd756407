// Package config provides color scheme and configuration management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ColorScheme defines the color palette for tree rendering.
type ColorScheme struct {
	Base      string // root node color (hex)
	Branch    string // branch command color
	Leaf      string // executable command color
	Param     string // parameter name color
	ParamKind string // parameter kind suffix, e.g. :int
	Invalid   string // invalid/error color
	Selected  string // selected item in TUI
}

// DefaultColors returns the default color scheme.
func DefaultColors() ColorScheme {
	return ColorScheme{
		Base:      "#FFFFFF",
		Branch:    "#5EA4F5",
		Leaf:      "#50FA7B",
		Param:     "#F1FA8C",
		ParamKind: "#FF79C6",
		Invalid:   "#FF5555",
		Selected:  "#00BFFF",
	}
}

// Config holds all swarmui configuration.
type Config struct {
	Colors        ColorScheme
	NoColor       bool
	Definitions   []string
	CatalogBranch string
	LinkAddr      string // empty runs the session on an in-memory loopback link
	HistoryFile   string
	JournalDir    string
	NoJournal     bool
	Tick          time.Duration
	MetricsAddr   string // empty disables the /metrics listener
}

// Keys understood in config files and SWARMUI_* environment variables.
const (
	KeyDefinitions   = "definitions"
	KeyCatalogBranch = "catalog_branch"
	KeyLinkAddr      = "link.address"
	KeyHistoryFile   = "history_file"
	KeyJournalDir    = "journal.dir"
	KeyNoJournal     = "journal.disabled"
	KeyTick          = "tick"
	KeyMetricsAddr   = "metrics.address"
	KeyNoColor       = "no_color"
)

// EnvPrefix prefixes environment overrides, e.g. SWARMUI_LINK_ADDRESS.
const EnvPrefix = "SWARMUI"

// Dir returns the swarmui state directory: $SWARMUI_HOME or ~/.swarmui.
func Dir() string {
	if d := os.Getenv("SWARMUI_HOME"); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".swarmui")
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		Colors:        DefaultColors(),
		NoColor:       os.Getenv("NO_COLOR") != "",
		CatalogBranch: "ROBOT",
		HistoryFile:   filepath.Join(dir, "history"),
		JournalDir:    dir,
		Tick:          20 * time.Millisecond,
	}
}

// NewViper returns a viper instance seeded with the defaults, bound to the
// SWARMUI_ environment and loaded from cfgFile, or from swarmui.{yaml,json,toml}
// in the state directory when cfgFile is empty. A missing default file is
// not an error.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault(KeyDefinitions, []string{})
	v.SetDefault(KeyCatalogBranch, d.CatalogBranch)
	v.SetDefault(KeyLinkAddr, "")
	v.SetDefault(KeyHistoryFile, d.HistoryFile)
	v.SetDefault(KeyJournalDir, d.JournalDir)
	v.SetDefault(KeyNoJournal, false)
	v.SetDefault(KeyTick, d.Tick)
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyNoColor, d.NoColor)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return v, nil
	}
	v.SetConfigName("swarmui")
	v.AddConfigPath(Dir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load builds a Config from v.
func Load(v *viper.Viper) (*Config, error) {
	c := DefaultConfig()
	c.Definitions = v.GetStringSlice(KeyDefinitions)
	c.CatalogBranch = v.GetString(KeyCatalogBranch)
	c.LinkAddr = v.GetString(KeyLinkAddr)
	c.HistoryFile = v.GetString(KeyHistoryFile)
	c.JournalDir = v.GetString(KeyJournalDir)
	c.NoJournal = v.GetBool(KeyNoJournal)
	c.Tick = v.GetDuration(KeyTick)
	c.MetricsAddr = v.GetString(KeyMetricsAddr)
	c.NoColor = v.GetBool(KeyNoColor)
	if c.Tick <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %s", KeyTick, c.Tick)
	}
	return c, nil
}
