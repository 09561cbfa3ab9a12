package config

import (
	"math"
	"sort"
)

// angular returns the angular speed of a circular orbit of radius r around mass m.
func angular(m, r float64) float64 { return math.Sqrt(m / (r * r * r)) }

// speed returns the circular orbital speed at radius r around mass m.
func speed(m, r float64) float64 { return math.Sqrt(m / r) }

func body(owner string, x, vy float64) BodyConfig {
	return BodyConfig{Owner: owner, Position: Vec{X: x}, Velocity: Vec{Y: vy}}
}

var Presets = map[string]func() *Scenario{
	"galaxy": func() *Scenario {
		return &Scenario{
			Name:        "galaxy",
			Description: "a star with two planets, one of them with a moon",
			Steps:       2000,
			Root: SystemConfig{
				Name: "sun", Radius: 1e5, Tick: 8, Orbit: Fixed(),
				Sources: []SourceConfig{{Name: "sun", Mass: 1e4, Radius: 40}},
				Bodies:  []BodyConfig{body("comet", 5000, 1)},
				Children: []SystemConfig{
					{
						Name: "terra", Radius: 200, Tick: 2, Orbit: Circular(2000, angular(1e4, 2000), 0),
						Sources: []SourceConfig{{Name: "terra", Mass: 100, Radius: 6}},
						Bodies:  []BodyConfig{body("station", 30, speed(100, 30))},
						Children: []SystemConfig{{
							Name: "luna", Radius: 10, Tick: 1, Orbit: Circular(60, angular(100, 60), 0),
							Sources: []SourceConfig{{Name: "luna", Mass: 2, Radius: 1.5}},
							Bodies:  []BodyConfig{body("lander", 4, speed(2, 4))},
						}},
					},
					{
						Name: "ares", Radius: 150, Tick: 4, Orbit: Circular(3500, angular(1e4, 3500), 2),
						Sources: []SourceConfig{{Name: "ares", Mass: 30, Radius: 4}},
						Bodies:  []BodyConfig{body("rover", 20, speed(30, 20))},
					},
				},
			},
		}
	},
	"ladder": func() *Scenario {
		return &Scenario{
			Name:        "ladder",
			Description: "four nested systems ticking at 8, 4, 2 and 1",
			Steps:       800,
			Root: SystemConfig{
				Name: "rung0", Radius: 1e4, Tick: 8, Orbit: Fixed(),
				Sources: []SourceConfig{{Name: "rung0", Mass: 1000}},
				Bodies:  []BodyConfig{body("b0", 3000, speed(1000, 3000))},
				Children: []SystemConfig{{
					Name: "rung1", Radius: 200, Tick: 4, Orbit: Circular(1000, angular(1000, 1000), 0),
					Sources: []SourceConfig{{Name: "rung1", Mass: 100}},
					Bodies:  []BodyConfig{body("b1", 150, speed(100, 150))},
					Children: []SystemConfig{{
						Name: "rung2", Radius: 40, Tick: 2, Orbit: Circular(100, angular(100, 100), 0),
						Sources: []SourceConfig{{Name: "rung2", Mass: 10}},
						Bodies:  []BodyConfig{body("b2", 30, speed(10, 30))},
						Children: []SystemConfig{{
							Name: "rung3", Radius: 8, Tick: 1, Orbit: Circular(20, angular(10, 20), 0),
							Sources: []SourceConfig{{Name: "rung3", Mass: 1}},
							Bodies:  []BodyConfig{body("b3", 5, speed(1, 5))},
						}},
					}},
				}},
			},
		}
	},
	"binary": func() *Scenario {
		w := angular(1000, 100)
		return &Scenario{
			Name:        "binary",
			Description: "two equal stars with a circumbinary planet and a close companion",
			Steps:       1500,
			Root: SystemConfig{
				Name: "barycenter", Radius: 1e4, Tick: 2, Orbit: Fixed(),
				Sources: []SourceConfig{{Name: "alpha", Mass: 500, Radius: 5, Orbit: Circular(50, w, 0)}},
				Bodies:  []BodyConfig{body("planet", 400, speed(1000, 400))},
				Children: []SystemConfig{{
					Name: "beta", Radius: 30, Tick: 1, Orbit: Circular(50, w, math.Pi),
					Sources: []SourceConfig{{Name: "beta", Mass: 500, Radius: 5}},
					Bodies:  []BodyConfig{body("companion", 20, speed(500, 20))},
				}},
			},
		}
	},
	"escape": func() *Scenario {
		return &Scenario{
			Name:        "escape",
			Description: "a probe leaving its moon for the planet's system",
			Steps:       600,
			Root: SystemConfig{
				Name: "planet", Radius: 1e5, Tick: 4, Orbit: Fixed(),
				Sources: []SourceConfig{{Name: "planet", Mass: 1000, Radius: 10}},
				Bodies:  []BodyConfig{body("sat", 200, speed(1000, 200))},
				Children: []SystemConfig{{
					Name: "moon", Radius: 50, Tick: 1, Orbit: Circular(500, angular(1000, 500), 0),
					Sources: []SourceConfig{{Name: "moon", Mass: 10, Radius: 2}},
					Bodies:  []BodyConfig{body("probe", 5, 3)},
				}},
			},
		}
	},
}

// GetPreset returns a fresh copy of the named scenario, or nil.
func GetPreset(name string) *Scenario {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
