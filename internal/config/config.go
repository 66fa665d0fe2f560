package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for psetkit
type Config struct {
	Flatten FlattenConfig `yaml:"flatten"`
	Output  OutputConfig  `yaml:"output"`
	Input   InputConfig   `yaml:"input"`
	Naming  NamingConfig  `yaml:"naming"`
	Dev     DevConfig     `yaml:"dev"`
}

// FlattenConfig controls address building for flattened views
type FlattenConfig struct {
	Delimiter string        `yaml:"delimiter"`
	Strict    bool          `yaml:"strict"` // fail on address collisions
	Exclude   []AddressRule `yaml:"exclude"`
}

// AddressRule matches flattened addresses by regular expression
type AddressRule struct {
	Pattern string `yaml:"pattern"`
	Comment string `yaml:"comment,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format   string `yaml:"format"` // text, json or yaml
	Color    string `yaml:"color"`  // auto, always or never
	SortKeys bool   `yaml:"sort_keys"`
}

// InputConfig controls decoding
type InputConfig struct {
	Format string `yaml:"format"` // auto, json or yaml
}

// NamingConfig controls renaming of nested keys
type NamingConfig struct {
	KeyCase     string            `yaml:"key_case"`
	KeyMappings map[string]string `yaml:"key_mappings"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

const (
	DefaultDelimiter    = ":"
	DefaultOutputFormat = "text"
	DefaultColor        = "auto"
	DefaultInputFormat  = "auto"
)

var (
	outputFormats = []string{"text", "json", "yaml"}
	colorModes    = []string{"auto", "always", "never"}
	inputFormats  = []string{"auto", "json", "yaml"}
)

var keyCases = map[string]func(string) string{
	"":                nil,
	"snake":           strcase.ToSnake,
	"kebab":           strcase.ToKebab,
	"camel":           strcase.ToCamel,
	"lower_camel":     strcase.ToLowerCamel,
	"screaming_snake": strcase.ToScreamingSnake,
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Flatten: FlattenConfig{
			Delimiter: DefaultDelimiter,
			Strict:    false,
			Exclude:   []AddressRule{},
		},
		Output: OutputConfig{
			Format:   DefaultOutputFormat,
			Color:    DefaultColor,
			SortKeys: true,
		},
		Input: InputConfig{
			Format: DefaultInputFormat,
		},
		Naming: NamingConfig{
			KeyCase:     "",
			KeyMappings: make(map[string]string),
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".psetkit.yml", ".psetkit.yaml", "psetkit.yml", "psetkit.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	if c.Flatten.Delimiter == "" {
		return fmt.Errorf("flatten.delimiter must not be empty")
	}
	if err := oneOf("output.format", c.Output.Format, outputFormats); err != nil {
		return err
	}
	if err := oneOf("output.color", c.Output.Color, colorModes); err != nil {
		return err
	}
	if err := oneOf("input.format", c.Input.Format, inputFormats); err != nil {
		return err
	}
	if _, ok := keyCases[c.Naming.KeyCase]; !ok {
		return fmt.Errorf("naming.key_case %q is not one of snake, kebab, camel, lower_camel, screaming_snake", c.Naming.KeyCase)
	}
	return nil
}

func oneOf(name, got string, allowed []string) error {
	for _, a := range allowed {
		if got == a {
			return nil
		}
	}
	return fmt.Errorf("%s %q is not one of %s", name, got, strings.Join(allowed, ", "))
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	for i := range c.Flatten.Exclude {
		rule := &c.Flatten.Exclude[i]
		regex, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", rule.Pattern, err)
		}
		rule.regex = regex
	}
	return nil
}

// MatchesAddress checks if this rule matches the given flattened address
func (r *AddressRule) MatchesAddress(addr string) bool {
	if r.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(r.Pattern)
		if err != nil {
			return false
		}
		r.regex = regex
	}
	return r.regex.MatchString(addr)
}

// ShouldSkipAddress checks if an address is excluded from flattened output
func (c *Config) ShouldSkipAddress(addr string) bool {
	for i := range c.Flatten.Exclude {
		if c.Flatten.Exclude[i].MatchesAddress(addr) {
			return true
		}
	}
	return false
}

// KeyName returns the nested key to use for a source key, applying naming rules
func (c *Config) KeyName(key string) string {
	// Check custom mappings first
	if mapped, exists := c.Naming.KeyMappings[key]; exists {
		return mapped
	}

	if convert := keyCases[c.Naming.KeyCase]; convert != nil {
		return convert(key)
	}

	return key
}

// RenamesKeys reports whether KeyName can change any key
func (c *Config) RenamesKeys() bool {
	return c.Naming.KeyCase != "" || len(c.Naming.KeyMappings) > 0
}

// CLIOverrides holds command line values that take precedence over the file
type CLIOverrides struct {
	Delimiter    string
	Strict       bool
	OutputFormat string
	Color        string
	InputFormat  string
	KeyCase      string
	Debug        bool
}

// LoadConfigWithCLI loads config with CLI argument precedence. A CLI value
// only overrides the file when it differs from the default, so an unset flag
// keeps the file's value.
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Delimiter != "" && cli.Delimiter != DefaultDelimiter {
		cfg.Flatten.Delimiter = cli.Delimiter
	}
	if cli.OutputFormat != "" && cli.OutputFormat != DefaultOutputFormat {
		cfg.Output.Format = cli.OutputFormat
	}
	if cli.Color != "" && cli.Color != DefaultColor {
		cfg.Output.Color = cli.Color
	}
	if cli.InputFormat != "" && cli.InputFormat != DefaultInputFormat {
		cfg.Input.Format = cli.InputFormat
	}
	if cli.KeyCase != "" {
		cfg.Naming.KeyCase = cli.KeyCase
	}

	// Boolean flags can only switch features on
	if cli.Strict {
		cfg.Flatten.Strict = true
	}
	if cli.Debug {
		cfg.Dev.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
