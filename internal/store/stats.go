package store

import "github.com/stress-monitor/esms/internal/model"

// Statistics is a derived aggregate over the current history. It is a
// projection with no lifecycle of its own; an empty history yields the zero
// value with Count 0.
type Statistics struct {
	Count          int     `json:"count"`
	AvgTemperature float64 `json:"avg_temperature"`
	AvgHumidity    float64 `json:"avg_humidity"`
	AvgSound       float64 `json:"avg_sound"`
	AvgHeartRate   float64 `json:"avg_heart_rate"`
	MinTemperature float64 `json:"min_temperature"`
	MaxTemperature float64 `json:"max_temperature"`
	MinHeartRate   float64 `json:"min_heart_rate"`
	MaxHeartRate   float64 `json:"max_heart_rate"`
}

// ComputeStatistics folds a snapshot of readings into per-channel aggregates.
// Pure function; the caller owns the snapshot.
func ComputeStatistics(readings []model.Reading) Statistics {
	if len(readings) == 0 {
		return Statistics{}
	}

	stats := Statistics{
		Count:          len(readings),
		MinTemperature: readings[0].Temperature,
		MaxTemperature: readings[0].Temperature,
		MinHeartRate:   readings[0].HeartRate,
		MaxHeartRate:   readings[0].HeartRate,
	}

	var tempSum, humSum, soundSum, hrSum float64
	for _, r := range readings {
		tempSum += r.Temperature
		humSum += r.Humidity
		soundSum += r.Sound
		hrSum += r.HeartRate

		if r.Temperature < stats.MinTemperature {
			stats.MinTemperature = r.Temperature
		}
		if r.Temperature > stats.MaxTemperature {
			stats.MaxTemperature = r.Temperature
		}
		if r.HeartRate < stats.MinHeartRate {
			stats.MinHeartRate = r.HeartRate
		}
		if r.HeartRate > stats.MaxHeartRate {
			stats.MaxHeartRate = r.HeartRate
		}
	}

	n := float64(len(readings))
	stats.AvgTemperature = tempSum / n
	stats.AvgHumidity = humSum / n
	stats.AvgSound = soundSum / n
	stats.AvgHeartRate = hrSum / n

	return stats
}
