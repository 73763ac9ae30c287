// Package config loads the dashboard configuration and the game list.
//
// Both files are usually JSON; they are parsed as YAML, which accepts JSON
// documents unchanged and also allows hand-written YAML configs.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kylerisse/dadboard/pkg/machine"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Defaults applied to missing (or zero) settings.
const (
	DefaultShareName       = "DadBoard$"
	DefaultStatusFile      = "status.json"
	DefaultStaleMinutes    = 5
	DefaultPollIntervalSec = 2.0
	DefaultListen          = ":1984"
	DefaultSchtasks        = "schtasks"
	DefaultLogLevel        = "info"
)

// Config is the dashboard configuration, normally shared/config.json.
type Config struct {
	PCs             []string `yaml:"pcs"`
	ShareName       string   `yaml:"shareName"`
	StatusFile      string   `yaml:"statusFile"`
	StaleMinutes    int      `yaml:"staleMinutes"`
	PollIntervalSec float64  `yaml:"pollIntervalSec"`

	ShareRoot string `yaml:"shareRoot"` // local mount root for the PC shares; empty means UNC paths
	DNSServer string `yaml:"dnsServer"` // LAN DNS server used to show PC addresses; empty disables lookups
	Listen    string `yaml:"listen"`    // HTTP listen address of the daemon
	ActionLog string `yaml:"actionLog"` // SQLite path for the action audit log; empty disables it
	Schtasks  string `yaml:"schtasks"`  // task scheduler binary
	LogLevel  string `yaml:"logLevel"`
}

// Load reads the config file at path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals config bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in default values.
func (c *Config) applyDefaults() {
	if c.ShareName == "" {
		c.ShareName = DefaultShareName
	}
	if c.StatusFile == "" {
		c.StatusFile = DefaultStatusFile
	}
	if c.StaleMinutes == 0 {
		c.StaleMinutes = DefaultStaleMinutes
	}
	if c.PollIntervalSec == 0 {
		c.PollIntervalSec = DefaultPollIntervalSec
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Schtasks == "" {
		c.Schtasks = DefaultSchtasks
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	for i := range c.PCs {
		c.PCs[i] = strings.TrimSpace(c.PCs[i])
	}
}

// validate checks that all settings are usable.
func (c *Config) validate() error {
	var errs []string
	seen := make(map[string]bool, len(c.PCs))
	for i, pc := range c.PCs {
		switch {
		case pc == "":
			errs = append(errs, fmt.Sprintf("pcs[%d] must not be empty", i))
		case seen[strings.ToLower(pc)]:
			errs = append(errs, fmt.Sprintf("pcs[%d] %q is listed twice", i, pc))
		}
		seen[strings.ToLower(pc)] = true
	}
	if c.StaleMinutes < 0 {
		errs = append(errs, "staleMinutes must not be negative")
	}
	if c.PollIntervalSec < 0 {
		errs = append(errs, "pollIntervalSec must not be negative")
	}
	if strings.ContainsAny(c.ShareName, `\/`) {
		errs = append(errs, "shareName must not contain path separators")
	}
	if strings.ContainsAny(c.StatusFile, `\/`) {
		errs = append(errs, "statusFile must not contain path separators")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("logLevel: %v", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// StaleAfter is the staleness threshold.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleMinutes) * time.Minute
}

// PollInterval is the time between poll cycles.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec * float64(time.Second))
}

// Machines returns one Machine per configured PC, in config order.
func (c *Config) Machines() []machine.Machine {
	machines := make([]machine.Machine, len(c.PCs))
	for i, pc := range c.PCs {
		machines[i] = machine.New(pc, c.ShareName, c.StatusFile, c.ShareRoot)
	}
	return machines
}
