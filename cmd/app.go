// Package cmd implements the lots command line application.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/lotbook"
	"github.com/google/subcommands"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "reports")
	c.Register(&positionsCmd{}, "reports")
	c.Register(&checkCmd{}, "ledger")
	c.Register(&symbolsCmd{}, "ledger")
	c.Register(&serveCmd{}, "server")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the TOML configuration file. Defaults to $LOTS_CONFIG or lots.toml")
var ledgerFile = flag.String("ledger-file", "", "Path to the ledger file containing transaction records (JSONL format)")
var logLevel = flag.String("log-level", "", "Log level (debug, info, warn, error)")

// Config holds the configuration of the application.
type Config struct {
	LedgerFile    string       `toml:"ledger_file"`
	LogLevel      string       `toml:"log_level"`
	Sort          string       `toml:"sort"`           // default order of the per-asset rows
	IncludeVoided bool         `toml:"include_voided"` // default voided policy
	Server        ServerConfig `toml:"server"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// NewDefaultConfig returns the configuration used when no file is found.
func NewDefaultConfig() *Config {
	return &Config{
		LedgerFile: "transactions.jsonl",
		LogLevel:   "warn",
		Sort:       lotbook.Discovery.String(),
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
	}
}

// LoadConfig loads configuration from a TOML file, if it exists, then
// applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	config := NewDefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// missing file, defaults apply.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}
	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if path := os.Getenv("LOTS_LEDGER_FILE"); path != "" {
		config.LedgerFile = path
	}
	if level := os.Getenv("LOTS_LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}
	if host := os.Getenv("LOTS_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("LOTS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
}

// setup resolves the configuration (defaults, file, environment then global
// flags) and builds the logger.
func setup() (*Config, zerolog.Logger, error) {
	path := *configFile
	if path == "" {
		path = os.Getenv("LOTS_CONFIG")
	}
	if path == "" {
		path = "lots.toml"
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if *ledgerFile != "" {
		cfg.LedgerFile = *ledgerFile
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger := NewLogger(cfg.LogLevel, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	return cfg, logger, nil
}

// NewLogger creates a logger with the specified level, unknown levels fall
// back to info.
func NewLogger(level string, w io.Writer) zerolog.Logger {
	var lvl zerolog.Level
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	default:
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// DecodeRecords reads the records of a ledger file.
func DecodeRecords(path string) ([]lotbook.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := lotbook.DecodeRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
