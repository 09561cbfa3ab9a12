package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/systree/internal/orbit"
	"github.com/san-kum/systree/internal/systree"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultSteps      = 1000
	DefaultIntegrator = "semi-implicit"
)

// Format is the encoding of a scenario file.
type Format int

const (
	YAML Format = iota
	TOML
)

// FormatFor picks the encoding from a file extension. Anything that is not
// .toml is read as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return TOML
	}
	return YAML
}

// Scenario is a declarative system tree plus run parameters.
type Scenario struct {
	Name        string       `yaml:"name" toml:"name"`
	Description string       `yaml:"description,omitempty" toml:"description,omitempty"`
	Integrator  string       `yaml:"integrator,omitempty" toml:"integrator,omitempty"`
	Steps       int          `yaml:"steps,omitempty" toml:"steps,omitempty"`
	Root        SystemConfig `yaml:"root" toml:"root"`
}

// SystemConfig describes one node. Orbit is required; leaving it out is a
// build error, not a stationary node.
type SystemConfig struct {
	Name     string         `yaml:"name,omitempty" toml:"name,omitempty"`
	Radius   float64        `yaml:"radius" toml:"radius"`
	Tick     int64          `yaml:"tick" toml:"tick"`
	Orbit    *OrbitConfig   `yaml:"orbit,omitempty" toml:"orbit,omitempty"`
	Sources  []SourceConfig `yaml:"sources,omitempty" toml:"sources,omitempty"`
	Bodies   []BodyConfig   `yaml:"bodies,omitempty" toml:"bodies,omitempty"`
	Children []SystemConfig `yaml:"children,omitempty" toml:"children,omitempty"`
}

type OrbitConfig struct {
	Kind   string  `yaml:"kind" toml:"kind"`
	Radius float64 `yaml:"radius,omitempty" toml:"radius,omitempty"`
	Speed  float64 `yaml:"speed,omitempty" toml:"speed,omitempty"`
	Phase  float64 `yaml:"phase,omitempty" toml:"phase,omitempty"`
}

// SourceConfig is a mass on a fixed orbit. A missing orbit means the source
// sits at the node's origin.
type SourceConfig struct {
	Name   string       `yaml:"name" toml:"name"`
	Mass   float64      `yaml:"mass" toml:"mass"`
	Radius float64      `yaml:"radius,omitempty" toml:"radius,omitempty"`
	Orbit  *OrbitConfig `yaml:"orbit,omitempty" toml:"orbit,omitempty"`
}

type BodyConfig struct {
	Owner    string       `yaml:"owner" toml:"owner"`
	Position Vec          `yaml:"position" toml:"position"`
	Velocity Vec          `yaml:"velocity" toml:"velocity"`
	Mass     float64      `yaml:"mass,omitempty" toml:"mass,omitempty"`
	Burns    []BurnConfig `yaml:"burns,omitempty" toml:"burns,omitempty"`
}

type BurnConfig struct {
	At     int64 `yaml:"at" toml:"at"`
	DeltaV Vec   `yaml:"delta_v" toml:"delta_v"`
}

type Vec struct {
	X float64 `yaml:"x" toml:"x"`
	Y float64 `yaml:"y" toml:"y"`
}

func (v Vec) R2() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

func FromR2(v r2.Vec) Vec { return Vec{X: v.X, Y: v.Y} }

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Unmarshal(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

func Save(path string, s *Scenario) error {
	data, err := Marshal(s, FormatFor(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func Marshal(s *Scenario, f Format) ([]byte, error) {
	if f == TOML {
		return toml.Marshal(s)
	}
	return yaml.Marshal(s)
}

// Unmarshal decodes a scenario. Integrator and Steps stay unset when the
// file omits them so runtime settings can supply them.
func Unmarshal(data []byte, f Format) (*Scenario, error) {
	s := &Scenario{}
	var err error
	if f == TOML {
		err = toml.Unmarshal(data, s)
	} else {
		err = yaml.Unmarshal(data, s)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Spec converts the scenario into the form consumed by systree.Build.
func (s *Scenario) Spec() (systree.NodeSpec, error) {
	return s.Root.spec()
}

// Build is a shorthand for Spec followed by systree.Build.
func (s *Scenario) Build() (*systree.Tree, error) {
	spec, err := s.Spec()
	if err != nil {
		return nil, err
	}
	return systree.Build(spec)
}

func (c SystemConfig) spec() (systree.NodeSpec, error) {
	spec := systree.NodeSpec{
		Name:   c.Name,
		Radius: c.Radius,
		Tick:   c.Tick,
	}
	if c.Orbit != nil {
		o, err := c.Orbit.Orbit()
		if err != nil {
			return spec, fmt.Errorf("config: system %q: %w", c.Name, err)
		}
		spec.Orbit = &o
	}

	for _, sc := range c.Sources {
		o := orbit.Fixed()
		if sc.Orbit != nil {
			var err error
			if o, err = sc.Orbit.Orbit(); err != nil {
				return spec, fmt.Errorf("config: source %q: %w", sc.Name, err)
			}
		}
		spec.Sources = append(spec.Sources, systree.Source{Name: sc.Name, Orbit: o, Mass: sc.Mass, Radius: sc.Radius})
	}

	for _, bc := range c.Bodies {
		b := systree.NewBody(bc.Owner, bc.Position.R2(), bc.Velocity.R2(), bc.Mass)
		for _, burn := range bc.Burns {
			b.Burns = append(b.Burns, systree.Burn{At: burn.At, DeltaV: burn.DeltaV.R2()})
		}
		spec.Bodies = append(spec.Bodies, b)
	}

	for _, cc := range c.Children {
		child, err := cc.spec()
		if err != nil {
			return spec, err
		}
		spec.Children = append(spec.Children, child)
	}
	return spec, nil
}

func (o OrbitConfig) Orbit() (orbit.Orbit, error) {
	kind, err := orbit.ParseKind(o.Kind)
	if err != nil {
		return orbit.Orbit{}, err
	}
	if kind == orbit.Stationary {
		return orbit.Fixed(), nil
	}
	return orbit.NewCircular(o.Radius, o.Speed, o.Phase), nil
}

func Fixed() *OrbitConfig { return &OrbitConfig{Kind: "stationary"} }

func Circular(radius, speed, phase float64) *OrbitConfig {
	return &OrbitConfig{Kind: "circular", Radius: radius, Speed: speed, Phase: phase}
}
