package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeExtract = "extract"
	ModeStdio   = "stdio"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultOutput      = "output/pdf/entergy_incident_tickets_batch1_extracted_v2.json"

	// EnvPrefix is prepended to every environment override, e.g. INCIDENT_EXTRACT_OUTPUT
	EnvPrefix = "INCIDENT_EXTRACT"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// ErrVersionRequested is returned by Load when --version is on the command line
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the incident extractor
type Config struct {
	// Mode selects one-shot extraction or the MCP tool server
	Mode string

	// Extraction configuration
	Input        string // source PDF, the single positional argument
	Output       string // JSON array destination
	TemplatePath string // report layout override, empty for the built-in one
	CrossCheck   bool   // cross-check the document with the PDF libraries

	// PDFDirectory bounds the files MCP tool calls may touch
	PDFDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeExtract,
		Output:       DefaultOutput,
		PDFDirectory: currentDir,
		Version:      "1.0.0",
		ServerName:   "incident-extract",
		LogLevel:     DefaultLogLevel,
		MaxFileSize:  DefaultMaxFileSize,
	}
}

// LoadFromFlags parses the process command line and environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[1:], os.Stderr)
}

// Load parses args with a private flag set and viper instance, so it can be
// called more than once. Usage text goes to usage.
func Load(args []string, usage io.Writer) (*Config, error) {
	if versionRequested(args) {
		return nil, ErrVersionRequested
	}

	cfg := DefaultConfig()
	v := viper.New()
	fs := pflag.NewFlagSet(cfg.ServerName, pflag.ContinueOnError)
	fs.SetOutput(usage)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	bindFlagsToViper(v, fs)
	setupUsageMessage(fs, usage)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	populateConfigFromViper(v, cfg)

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		cfg.Input = rest[0]
	default:
		return nil, fmt.Errorf("expected a single input PDF, got %d arguments", len(rest))
	}

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("output", cfg.Output)
	v.SetDefault("template", cfg.TemplatePath)
	v.SetDefault("validate", cfg.CrossCheck)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("mode", cfg.Mode, "Run mode: 'extract' for one PDF, 'stdio' for the MCP tool server")
	fs.StringP("output", "o", cfg.Output, "Path of the JSON file to write")
	fs.String("template", cfg.TemplatePath, "Report layout YAML (built-in Incident Summary Report when empty)")
	fs.Bool("validate", cfg.CrossCheck, "Cross-check page count and PDF version with the PDF libraries")
	fs.String("dir", cfg.PDFDirectory, "Directory MCP tool calls may read from and write to (stdio mode only)")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	fs.BoolP("version", "v", false, "Print version information and exit")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	for _, name := range []string{"mode", "output", "template", "validate", "dir", "loglevel", "maxfilesize"} {
		_ = v.BindPFlag(name, fs.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet, w io.Writer) {
	fs.Usage = func() {
		fmt.Fprintf(w, "Usage of %s:\n", fs.Name())
		fmt.Fprintf(w, "\nIncident Extract - pull incident tickets out of Incident Summary Report PDFs\n\n")
		fmt.Fprintf(w, "  %s [options] <input.pdf>\n\n", fs.Name())
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  %s batch1.pdf                          # write the default output file\n", fs.Name())
		fmt.Fprintf(w, "  %s -o tickets.json --validate batch1.pdf\n", fs.Name())
		fmt.Fprintf(w, "  %s --mode=stdio --dir=/path/to/pdfs     # MCP tool server\n", fs.Name())
		fmt.Fprintf(w, "\nEnvironment Variables:\n")
		fmt.Fprintf(w, "  %s_MODE         Run mode\n", EnvPrefix)
		fmt.Fprintf(w, "  %s_OUTPUT       Output path\n", EnvPrefix)
		fmt.Fprintf(w, "  %s_TEMPLATE     Layout template\n", EnvPrefix)
		fmt.Fprintf(w, "  %s_VALIDATE     Cross-check the PDF\n", EnvPrefix)
		fmt.Fprintf(w, "  %s_DIR          MCP sandbox directory\n", EnvPrefix)
		fmt.Fprintf(w, "  %s_LOGLEVEL     Log level\n", EnvPrefix)
		fmt.Fprintf(w, "  %s_MAXFILESIZE  Maximum file size\n", EnvPrefix)
	}
}

// versionRequested reports whether a version flag appears before "--"
func versionRequested(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Output = v.GetString("output")
	cfg.TemplatePath = v.GetString("template")
	cfg.CrossCheck = v.GetBool("validate")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeExtract && c.Mode != ModeStdio {
		return errors.New("mode must be either 'extract' or 'stdio'")
	}

	if c.IsExtractMode() {
		if c.Input == "" {
			return errors.New("an input PDF path is required")
		}
		if c.Output == "" {
			return errors.New("output path cannot be empty")
		}
	}

	// The sandbox directory is not created here, so placeholder paths pass.
	if c.IsStdioMode() && c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Input: %s, Output: %s, Template: %s, Validate: %t, "+
		"PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Input, c.Output, c.TemplatePath, c.CrossCheck, c.PDFDirectory, c.LogLevel, c.MaxFileSize)
}

// IsExtractMode returns true for one-shot extraction of a single PDF
func (c *Config) IsExtractMode() bool {
	return c.Mode == ModeExtract
}

// IsStdioMode returns true if the MCP tool server runs over standard I/O
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
