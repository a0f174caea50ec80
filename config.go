package choicescript

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the name LoadConfig looks for in a project directory.
const ConfigFile = ".cslint.yaml"

// Config tunes the checks a Validator makes. The zero Config disables
// the style and placement checks; use DefaultConfig for the usual ones.
type Config struct {
	Style StyleConfig `yaml:"style"`

	// CommandPlacement reports commands that don't start their line.
	CommandPlacement bool `yaml:"command_placement"`

	// ExtraVariables are treated as built in. Useful for variables a
	// game's custom scripts create.
	ExtraVariables []string `yaml:"extra_variables,omitempty"`
}

// StyleConfig controls the Choice of Games style checks.
type StyleConfig struct {
	Ellipsis bool     `yaml:"ellipsis"`
	EmDash   bool     `yaml:"em_dash"`
	Severity Severity `yaml:"severity"`
}

// DefaultConfig returns the configuration used when a project has none.
func DefaultConfig() Config {
	return Config{
		Style: StyleConfig{
			Ellipsis: true,
			EmDash:   true,
			Severity: Information,
		},
		CommandPlacement: true,
	}
}

// ConfigError is returned when a configuration file can't be read.
type ConfigError struct {
	File string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ParseConfig parses a YAML configuration. Keys it omits keep their
// DefaultConfig values; unknown keys are an error.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads the configuration file name from fsys. A missing file
// yields DefaultConfig.
func LoadConfig(fsys fs.FS, name string) (Config, error) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, &ConfigError{File: name, Err: err}
	}
	c, err := ParseConfig(data)
	if err != nil {
		return Config{}, &ConfigError{File: name, Err: err}
	}
	return c, nil
}

func (s Severity) MarshalYAML() (any, error) {
	return s.String(), nil
}

func (s *Severity) UnmarshalYAML(n *yaml.Node) error {
	var name string
	if err := n.Decode(&name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*s = sev
	return nil
}
