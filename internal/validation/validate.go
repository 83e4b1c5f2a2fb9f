package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stress-monitor/esms/internal/model"
)

// ErrValidation marks input validation failures; callers map it to a 400.
var ErrValidation = errors.New("validation failed")

// Accepted sensor input ranges. These are the sensors' reportable ranges, not
// the narrower bands the generator produces.
const (
	TempMin, TempMax   = -40.0, 80.0  // DHT11 reportable range, Celsius
	HumMin, HumMax     = 0.0, 100.0   // humidity percentage
	SoundMin, SoundMax = 0.0, 1023.0  // 10-bit analog sound level
	HRMin, HRMax       = 30.0, 220.0  // physiological heart rate, BPM
)

// Pagination limits for history queries.
const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 1000
)

// SensorInput checks every field of an ingested reading against its range and
// reports all violations at once.
func SensorInput(in model.SensorInput) error {
	var problems []string

	if in.Temperature < TempMin || in.Temperature > TempMax {
		problems = append(problems, fmt.Sprintf("temperature %.1f out of range [%.0f, %.0f]", in.Temperature, TempMin, TempMax))
	}
	if in.Humidity < HumMin || in.Humidity > HumMax {
		problems = append(problems, fmt.Sprintf("humidity %.1f out of range [%.0f, %.0f]", in.Humidity, HumMin, HumMax))
	}
	if in.Sound < SoundMin || in.Sound > SoundMax {
		problems = append(problems, fmt.Sprintf("sound %.1f out of range [%.0f, %.0f]", in.Sound, SoundMin, SoundMax))
	}
	if in.HeartRate < HRMin || in.HeartRate > HRMax {
		problems = append(problems, fmt.Sprintf("heart_rate %.1f out of range [%.0f, %.0f]", in.HeartRate, HRMin, HRMax))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// Pagination validates page and limit query values, applying defaults for
// zero values.
func Pagination(page, limit int) (int, int, error) {
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}

	if page < 1 {
		return 0, 0, fmt.Errorf("%w: page must be >= 1, got %d", ErrValidation, page)
	}
	if limit < 1 || limit > MaxLimit {
		return 0, 0, fmt.Errorf("%w: limit must be in [1, %d], got %d", ErrValidation, MaxLimit, limit)
	}
	return page, limit, nil
}
