package loader

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// PlantUMLConfig controls how the PlantUML backend turns a script into a
// diagram.
type PlantUMLConfig struct {
	UseAPI   bool   `toml:"use_api"`
	APIURL   string `toml:"api_url"`
	LocalCmd string `toml:"local_cmd"`
}

// Colors maps utilization day kinds onto PlantUML color names for the
// resource footbox.
type Colors struct {
	PubHolidays string `toml:"worker_pub_holidays"`
	Holidays    string `toml:"worker_holidays"`
	OtherDuties string `toml:"worker_other_duties"`
	Overloaded  string `toml:"worker_overloaded"`
	Underloaded string `toml:"worker_underloaded"`
	Fine        string `toml:"worker_fine"`
	Unassigned  string `toml:"worker_unassigned"`
}

// BackendConfig groups the rendering backend settings.
type BackendConfig struct {
	PlantUML PlantUMLConfig `toml:"plantuml"`
	Colors   Colors         `toml:"colors"`
}

// Config is the optional backend configuration file.
type Config struct {
	Backend BackendConfig `toml:"backend"`
}

// DefaultConfig returns the compiled-in backend settings used when no
// config file is given.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			PlantUML: PlantUMLConfig{
				LocalCmd: "plantuml",
			},
			Colors: Colors{
				PubHolidays: "salmon",
				Holidays:    "orange",
				OtherDuties: "violet",
				Overloaded:  "red",
				Underloaded: "gold",
				Fine:        "lightgreen",
				Unassigned:  "lightgray",
			},
		},
	}
}

// LoadConfig reads a backend config TOML file, filling unset fields from
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
