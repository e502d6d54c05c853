// Package config loads renderer, object and animator settings from TOML or YAML files and
// pushes them into live components.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-instancer/engine/animator"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("config: unsupported format")
	// ErrInvalid is wrapped by every Validate failure.
	ErrInvalid = errors.New("config: invalid")
)

// Format selects the file encoding.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFor picks the format from a file extension: .toml, .yaml or .yml.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Format: the format
//   - error: ErrUnsupportedFormat for any other extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// Config is the file representation of a scene's settings. Zero values mean "use the default".
type Config struct {
	Engine     EngineConfig    `toml:"engine" yaml:"engine"`
	Renderer   RendererConfig  `toml:"renderer" yaml:"renderer"`
	References ReferenceConfig `toml:"references" yaml:"references"`
	// Objects is indexed by ObjectID.
	Objects []ObjectConfig `toml:"objects" yaml:"objects"`
	Skew    AnimatorConfig `toml:"skew" yaml:"skew"`
	Sway    AnimatorConfig `toml:"sway" yaml:"sway"`
}

// EngineConfig holds the run loop settings.
type EngineConfig struct {
	TickRate  float64 `toml:"tick_rate" yaml:"tick_rate"`
	Profiling bool    `toml:"profiling" yaml:"profiling"`
}

// RendererConfig holds the instance renderer settings.
type RendererConfig struct {
	Culling bool `toml:"culling" yaml:"culling"`
	// FadeDistance is the cross-fade band width. Unset uses the default, 0 or less disables fading.
	FadeDistance *float32 `toml:"fade_distance" yaml:"fade_distance"`
	// Workers is the classification worker count. 0 means one worker.
	Workers int `toml:"workers" yaml:"workers"`
}

// ReferenceConfig holds the reference manager settings.
type ReferenceConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
}

// ObjectConfig describes one object type.
type ObjectConfig struct {
	Name string      `toml:"name" yaml:"name"`
	Hide bool        `toml:"hide" yaml:"hide"`
	LODs []LODConfig `toml:"lods" yaml:"lods"`
}

// LODConfig describes one LOD of an object type. Unset shadow flags leave the LOD unchanged.
//
// The base transform is baked into the LOD's render mesh. Setting any of its fields enables
// baking; unset fields keep the LOD's current value.
type LODConfig struct {
	Distance       float32 `toml:"distance" yaml:"distance"`
	Billboard      bool    `toml:"billboard" yaml:"billboard"`
	CastShadows    *bool   `toml:"cast_shadows" yaml:"cast_shadows"`
	ReceiveShadows *bool   `toml:"receive_shadows" yaml:"receive_shadows"`

	BasePosition *[3]float32 `toml:"base_position" yaml:"base_position"`
	// BaseRotation is in Euler degrees, applied Z then X then Y.
	BaseRotation *[3]float32 `toml:"base_rotation" yaml:"base_rotation"`
	BaseScale    *[3]float32 `toml:"base_scale" yaml:"base_scale"`
}

// HasBaseTransform reports whether any base transform field is set.
func (l LODConfig) HasBaseTransform() bool {
	return l.BasePosition != nil || l.BaseRotation != nil || l.BaseScale != nil
}

// AnimatorConfig holds one animator's settings.
type AnimatorConfig struct {
	// MaxDistance limits animation to instances this close to the viewer. 0 means unlimited.
	MaxDistance float32 `toml:"max_distance" yaml:"max_distance"`
	// Profiles is indexed by ObjectID.
	Profiles []animator.Profile `toml:"profiles" yaml:"profiles"`
}

// decoder is satisfied by both the TOML and YAML decoders.
type decoder interface {
	Decode(v any) error
}

func newDecoder(r io.Reader, format Format) decoder {
	if format == FormatYAML {
		return yaml.NewDecoder(r)
	}
	return toml.NewDecoder(r)
}

// Load reads and validates the config at path, choosing the format by extension.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - *Config: the config
//   - error: a format, read, decode or validation error
func Load(path string) (*Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	c, err := Decode(bufio.NewReader(f), format)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Decode reads and validates a config from r.
//
// Parameters:
//   - r: the encoded config
//   - format: the encoding
//
// Returns:
//   - *Config: the config
//   - error: a decode or validation error
func Decode(r io.Reader, format Format) (*Config, error) {
	c := &Config{}
	if err := newDecoder(r, format).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects negative distances, speeds, amounts and worker counts, and base scales with a
// zero component.
//
// Returns:
//   - error: wraps ErrInvalid, nil if the config is usable
func (c *Config) Validate() error {
	if c.Engine.TickRate < 0 {
		return fmt.Errorf("%w: engine.tick_rate %v", ErrInvalid, c.Engine.TickRate)
	}
	if c.Renderer.Workers < 0 {
		return fmt.Errorf("%w: renderer.workers %d", ErrInvalid, c.Renderer.Workers)
	}
	for i, o := range c.Objects {
		for j, l := range o.LODs {
			if l.Distance < 0 {
				return fmt.Errorf("%w: objects[%d].lods[%d].distance %v", ErrInvalid, i, j, l.Distance)
			}
			if l.BaseScale != nil && slices.Contains(l.BaseScale[:], 0) {
				return fmt.Errorf("%w: objects[%d].lods[%d].base_scale %v", ErrInvalid, i, j, *l.BaseScale)
			}
		}
	}
	for name, a := range map[string]AnimatorConfig{"skew": c.Skew, "sway": c.Sway} {
		if a.MaxDistance < 0 {
			return fmt.Errorf("%w: %s.max_distance %v", ErrInvalid, name, a.MaxDistance)
		}
		for i, p := range a.Profiles {
			if p.Amount < 0 || p.Speed < 0 {
				return fmt.Errorf("%w: %s.profiles[%d] %+v", ErrInvalid, name, i, p)
			}
		}
	}
	return nil
}

// ObjectNames returns the configured object names in ObjectID order.
func (c *Config) ObjectNames() []string {
	names := make([]string, len(c.Objects))
	for i, o := range c.Objects {
		names[i] = o.Name
	}
	return names
}
