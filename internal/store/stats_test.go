package store

import (
	"testing"

	"github.com/stress-monitor/esms/internal/model"
)

func TestComputeStatistics_Empty(t *testing.T) {
	stats := ComputeStatistics(nil)
	if stats != (Statistics{}) {
		t.Errorf("ComputeStatistics(nil) = %+v, want zero value", stats)
	}
}

func TestComputeStatistics_Aggregates(t *testing.T) {
	readings := []model.Reading{
		{Temperature: 20, Humidity: 40, Sound: 100, HeartRate: 60},
		{Temperature: 30, Humidity: 60, Sound: 200, HeartRate: 80},
	}

	stats := ComputeStatistics(readings)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"AvgTemperature", stats.AvgTemperature, 25},
		{"AvgHumidity", stats.AvgHumidity, 50},
		{"AvgSound", stats.AvgSound, 150},
		{"AvgHeartRate", stats.AvgHeartRate, 70},
		{"MinTemperature", stats.MinTemperature, 20},
		{"MaxTemperature", stats.MaxTemperature, 30},
		{"MinHeartRate", stats.MinHeartRate, 60},
		{"MaxHeartRate", stats.MaxHeartRate, 80},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if stats.Count != 2 {
		t.Errorf("Count = %d, want 2", stats.Count)
	}
}

func TestComputeStatistics_SingleReading(t *testing.T) {
	stats := ComputeStatistics([]model.Reading{
		{Temperature: 22.5, Humidity: 55, Sound: 300, HeartRate: 72},
	})

	if stats.MinTemperature != 22.5 || stats.MaxTemperature != 22.5 {
		t.Errorf("single reading min/max temperature = %v/%v, want 22.5/22.5",
			stats.MinTemperature, stats.MaxTemperature)
	}
	if stats.AvgHeartRate != 72 {
		t.Errorf("AvgHeartRate = %v, want 72", stats.AvgHeartRate)
	}
}

func TestStatistics_TracksEviction(t *testing.T) {
	s := New(2)
	s.Record(model.Reading{Temperature: 10})
	s.Record(model.Reading{Temperature: 20})
	s.Record(model.Reading{Temperature: 30})

	stats := s.Statistics()
	if stats.Count != 2 {
		t.Fatalf("Count = %d, want 2", stats.Count)
	}
	if stats.MinTemperature != 20 || stats.MaxTemperature != 30 {
		t.Errorf("min/max temperature = %v/%v, want 20/30 after eviction",
			stats.MinTemperature, stats.MaxTemperature)
	}
}
