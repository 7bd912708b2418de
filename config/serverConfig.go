package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
)

const (
	// DefaultServerPort is used when --port is absent or malformed.
	DefaultServerPort = 8000

	// DefaultMaxConnections keeps the server serving one connection at a time.
	DefaultMaxConnections = 1

	portFlag        = "--port"
	metricsPortFlag = "--metrics-port"
)

// ServerConfig is a struct for the static server config.
type ServerConfig struct {
	// Port is the TCP port the server binds on all interfaces.
	Port int `validate:"min=0,max=65535"`

	// MetricsPort enables a Prometheus endpoint on a second listener, 0 disables it.
	MetricsPort int `validate:"min=0,max=65535"`

	// Root is the directory served to clients.
	Root string `validate:"required,dir"`

	MaxConnections int `validate:"gte=1"`
}

// ParseServerArgs builds a ServerConfig from the command line arguments
// (without the program name). Malformed values are reported through logger
// and replaced by defaults.
func ParseServerArgs(args []string, logger *log.Logger) *ServerConfig {
	cfg := &ServerConfig{
		Port:           DefaultServerPort,
		MaxConnections: DefaultMaxConnections,
	}

	if v, ok := flagValue(args, portFlag); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			logger.Printf("⚠️  Invalid port number, using default port %d", DefaultServerPort)
		} else {
			cfg.Port = port
		}
	}

	if v, ok := flagValue(args, metricsPortFlag); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			logger.Print("⚠️  Invalid metrics port number, metrics are disabled")
		} else {
			cfg.MetricsPort = port
		}
	}

	return cfg
}

// flagValue returns the argument following the first occurrence of name.
func flagValue(args []string, name string) (string, bool) {
	for i, arg := range args {
		if arg != name {
			continue
		}
		if i+1 < len(args) {
			return args[i+1], true
		}
		return "", false
	}
	return "", false
}

// Validate checks the config with the given validator.
func (c *ServerConfig) Validate(v *validator.Validate) error {
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	return nil
}

// ExecutableDir returns the directory holding the running binary.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}
