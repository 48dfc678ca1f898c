package collector

import (
	"testing"
)

func TestSensorsOrderAndNames(t *testing.T) {
	want := []string{
		"yesterday_delta",
		"yesterday_total",
		"last_year_delta",
		"this_year_delta",
		"highest_monthly_delta",
		"last_known_total",
	}

	if len(Sensors) != len(want) {
		t.Fatalf("Expected %d sensors, got %d", len(want), len(Sensors))
	}
	for i, name := range want {
		if Sensors[i].Name != name {
			t.Errorf("Sensors[%d] = %q, want %q", i, Sensors[i].Name, name)
		}
	}
}

func TestReadSensors(t *testing.T) {
	readings := ReadSensors(freshSnapshot())

	want := map[string]float64{
		"yesterday_delta":       0.25,
		"yesterday_total":       1234.5,
		"last_year_delta":       101,
		"this_year_delta":       42,
		"highest_monthly_delta": 11,
		"last_known_total":      1234.5,
	}
	for _, r := range readings {
		if r.Value != want[r.Name] {
			t.Errorf("%s = %v, want %v", r.Name, r.Value, want[r.Name])
		}
	}

	if readings[1].StateClass != StateClassTotal {
		t.Errorf("yesterday_total state class = %q, want %q", readings[1].StateClass, StateClassTotal)
	}
}

func TestSensorByName(t *testing.T) {
	s, ok := SensorByName("this_year_delta")
	if !ok {
		t.Fatal("this_year_delta should exist")
	}
	if got := s.Value(freshSnapshot()); got != 42 {
		t.Errorf("this_year_delta value = %v, want 42", got)
	}

	if _, ok := SensorByName("tomorrow_delta"); ok {
		t.Error("tomorrow_delta should not exist")
	}
}
