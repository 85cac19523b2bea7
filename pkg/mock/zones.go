package mock

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/zonewatch/zonewatch/pkg/wire"
)

//go:embed zones.yaml
var defaultZonesYAML []byte

// Zone describes one simulated clean-room zone: its name and how many
// sensors of each type it carries.
type Zone struct {
	Name    string         `yaml:"name"`
	Sensors map[string]int `yaml:"sensors"`
}

// zoneFile is the on-disk shape of a zone definition file.
type zoneFile struct {
	Zones []Zone `yaml:"zones"`
}

// ParseZones decodes a YAML zone definition document.
func ParseZones(data []byte) ([]Zone, error) {
	var f zoneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing zone definitions: %w", err)
	}
	if len(f.Zones) == 0 {
		return nil, fmt.Errorf("zone definitions: no zones")
	}
	for _, z := range f.Zones {
		if z.Name == "" {
			return nil, fmt.Errorf("zone definitions: zone without name")
		}
		for t := range z.Sensors {
			if !wire.SensorType(t).Valid() {
				return nil, fmt.Errorf("zone %s: unknown sensor type %q", z.Name, t)
			}
		}
	}
	return f.Zones, nil
}

// DefaultZones returns the embedded zone definitions.
func DefaultZones() []Zone {
	zones, err := ParseZones(defaultZonesYAML)
	if err != nil {
		// The embedded file is validated by tests; a parse failure here
		// is a build defect.
		panic(err)
	}
	return zones
}

// count returns the number of sensors of a type in the zone.
func (z Zone) count(t wire.SensorType) int {
	return z.Sensors[string(t)]
}
