package collector

import "github.com/zgpcy/toutsurmoneau-exporter/internal/suez"

// State classes, as understood by home automation consumers of the sensors
const (
	StateClassMeasurement = "measurement"
	StateClassTotal       = "total"
)

// Sensor maps a published sensor name to a snapshot field, all in m³
type Sensor struct {
	Name       string
	StateClass string
	Value      func(*suez.Snapshot) float64
}

// Sensors is the fixed, ordered sensor set
var Sensors = []Sensor{
	{Name: "yesterday_delta", StateClass: StateClassMeasurement, Value: func(s *suez.Snapshot) float64 { return s.Last.Delta }},
	{Name: "yesterday_total", StateClass: StateClassTotal, Value: func(s *suez.Snapshot) float64 { return s.Last.Total }},
	{Name: "last_year_delta", StateClass: StateClassMeasurement, Value: func(s *suez.Snapshot) float64 { return s.LastYearOverall }},
	{Name: "this_year_delta", StateClass: StateClassMeasurement, Value: func(s *suez.Snapshot) float64 { return s.ThisYearOverall }},
	{Name: "highest_monthly_delta", StateClass: StateClassMeasurement, Value: func(s *suez.Snapshot) float64 { return s.HighestMonthly }},
	{Name: "last_known_total", StateClass: StateClassTotal, Value: func(s *suez.Snapshot) float64 { return s.LastKnown }},
}

// SensorByName looks a sensor up in Sensors
func SensorByName(name string) (Sensor, bool) {
	for _, s := range Sensors {
		if s.Name == name {
			return s, true
		}
	}
	return Sensor{}, false
}

// SensorReading is a sensor evaluated against a snapshot
type SensorReading struct {
	Name       string  `json:"name"`
	StateClass string  `json:"state_class"`
	Value      float64 `json:"value"`
}

// ReadSensors evaluates every sensor, in table order
func ReadSensors(snap *suez.Snapshot) []SensorReading {
	out := make([]SensorReading, 0, len(Sensors))
	for _, s := range Sensors {
		out = append(out, SensorReading{Name: s.Name, StateClass: s.StateClass, Value: s.Value(snap)})
	}
	return out
}
