// Package validation decides whether a model or a request is safe to hand to
// an execution backend.
//
// Models and requests come from outside the trust boundary, so every index is
// range-checked, every size product and offset sum is overflow-checked, and
// every inconsistency is reported as a *ValidationError rather than repaired.
// The validators never mutate their inputs and keep no state between calls,
// so one Validator can serve any number of goroutines.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/nncore/internal/logutil"
	"github.com/born-ml/nncore/internal/parallel"
)

// Default limits. They bound the work and memory a hostile model can demand.
const (
	DefaultMaxOperands   = 1 << 20
	DefaultMaxOperations = 1 << 20
	DefaultMaxRank       = 8
	DefaultMaxDimension  = 1 << 24
)

// Mode controls how complete a model must be.
type Mode int

const (
	// ModeStrict performs all checks (default, required before execution).
	ModeStrict Mode = iota
	// ModePartial is for graphs still under construction: operation
	// signatures and operand provenance are not checked, while code, range,
	// shape and size checks still apply.
	ModePartial
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModePartial:
		return "partial"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "strict":
		*m = ModeStrict
	case "partial":
		*m = ModePartial
	default:
		return fmt.Errorf("unknown validation mode %q", string(text))
	}
	return nil
}

// Limits caps the size of a model. Zero fields fall back to the defaults.
type Limits struct {
	MaxOperands   uint32 `yaml:"maxOperands,omitempty"`
	MaxOperations uint32 `yaml:"maxOperations,omitempty"`
	MaxRank       uint32 `yaml:"maxRank,omitempty"`
	MaxDimension  uint32 `yaml:"maxDimension,omitempty"`
}

// DefaultLimits returns the default model limits.
func DefaultLimits() Limits {
	return Limits{
		MaxOperands:   DefaultMaxOperands,
		MaxOperations: DefaultMaxOperations,
		MaxRank:       DefaultMaxRank,
		MaxDimension:  DefaultMaxDimension,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxOperands == 0 {
		l.MaxOperands = d.MaxOperands
	}
	if l.MaxOperations == 0 {
		l.MaxOperations = d.MaxOperations
	}
	if l.MaxRank == 0 {
		l.MaxRank = d.MaxRank
	}
	if l.MaxDimension == 0 {
		l.MaxDimension = d.MaxDimension
	}
	return l
}

// Config configures a Validator.
type Config struct {
	Mode   Mode   `yaml:"mode"`
	Limits Limits `yaml:"limits"`

	// AllowUnspecifiedOutputs lets a request bind an output with length 0,
	// leaving the size to be determined when the output is written.
	AllowUnspecifiedOutputs bool `yaml:"allowUnspecifiedOutputs"`

	// FailureLevel is the level validation failures are logged at.
	FailureLevel slog.Level `yaml:"failureLevel"`
	// Tags enables detailed dumps; TagModel traces every validated model.
	Tags logutil.Tags `yaml:"tags"`

	// Parallel controls the fan-out of Validator.Requests.
	Parallel parallel.Config `yaml:"parallel"`

	// Logger receives validation logs. Nil discards them.
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a strict configuration with default limits that logs
// failures at error level to nowhere.
func DefaultConfig() Config {
	return Config{
		Mode:         ModeStrict,
		Limits:       DefaultLimits(),
		FailureLevel: slog.LevelError,
		Parallel:     parallel.DefaultConfig(),
	}
}

// Validate checks for invalid configuration values.
func (c *Config) Validate() error {
	if c.Mode != ModeStrict && c.Mode != ModePartial {
		return fmt.Errorf("invalid mode %d", int(c.Mode))
	}
	if c.Limits.MaxRank > 64 {
		return fmt.Errorf("maxRank must be <= 64, got %d", c.Limits.MaxRank)
	}
	if c.Parallel.NumWorkers < 0 || c.Parallel.MinChunkSize < 0 {
		return fmt.Errorf("parallel settings must not be negative")
	}
	return nil
}

// LoadConfig reads a YAML configuration file. Fields missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML configuration document on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
