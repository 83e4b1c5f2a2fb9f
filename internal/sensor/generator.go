package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/stress-monitor/esms/internal/metrics"
	"github.com/stress-monitor/esms/internal/model"
)

// Recorder accepts generated readings. *store.Store satisfies it; MultiRecorder
// tees readings to additional sinks such as the Redis mirror.
type Recorder interface {
	Record(model.Reading)
}

// Channel value ranges and noise parameters.
const (
	tempMin, tempMax   = 0.0, 50.0
	humMin, humMax     = 20.0, 90.0
	soundMin, soundMax = 0.0, 1023.0
	hrMin, hrMax       = 50.0, 120.0

	tempNoiseSigma  = 0.5
	humNoiseSigma   = 2.0
	soundNoiseSigma = 30.0
	hrNoiseSigma    = 3.0

	// Phase advances by this amount per tick, wrapping at 2π. At one tick
	// per second a full cycle takes roughly ten minutes, standing in for a
	// circadian rhythm at demo timescales.
	phaseIncrement = 0.01

	// Transient loud events: probability per tick and spike magnitude.
	soundSpikeProb = 0.05
	soundSpikeMin  = 200.0
	soundSpikeMax  = 500.0

	stressCheckEvery   = 60  // ticks between stress indicator evaluations
	baselineShiftEvery = 300 // ticks between baseline random walks
)

// Baseline random walk bounds.
const (
	baseTempMin, baseTempMax = 18.0, 28.0
	baseHumMin, baseHumMax   = 35.0, 65.0
)

// Generator synthesizes readings on a fixed cadence. Its state (baselines and
// phase accumulator) is owned exclusively by the generator goroutine and never
// shared.
type Generator struct {
	interval time.Duration
	rng      *rand.Rand
	log      *slog.Logger

	phase         float64
	baseTemp      float64
	baseHumidity  float64
	baseSound     float64
	baseHeartRate float64

	tickCount uint64
}

// New creates a generator emitting one reading per interval. A zero seed
// selects an entropy-based seed; any other value makes the output sequence
// deterministic. An invalid interval is a construction error, never a tick
// failure.
func New(interval time.Duration, seed int64, log *slog.Logger) (*Generator, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sensor interval must be positive, got %v", interval)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if log == nil {
		log = slog.Default()
	}

	return &Generator{
		interval:      interval,
		rng:           rand.New(rand.NewSource(seed)),
		log:           log,
		baseTemp:      22.0,  // comfortable room temperature
		baseHumidity:  50.0,  // normal indoor humidity
		baseSound:     150.0, // quiet room
		baseHeartRate: 70.0,  // resting heart rate
	}, nil
}

// Run generates readings until the context is cancelled, recording each one.
// It never blocks the recorder beyond a single Record call.
func (g *Generator) Run(ctx context.Context, rec Recorder) {
	g.log.Info("starting signal generator", slog.Duration("interval", g.interval))

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.log.Info("signal generator stopped", slog.Uint64("ticks", g.tickCount))
			return
		case <-ticker.C:
			reading := g.next(time.Now().UTC())
			rec.Record(reading)
			metrics.ReadingsGenerated.Inc()

			g.log.Debug("generated reading",
				slog.Uint64("tick", g.tickCount),
				slog.String("reading_id", reading.ID.String()),
				slog.Float64("temperature", reading.Temperature),
				slog.Float64("humidity", reading.Humidity),
				slog.Float64("sound", reading.Sound),
				slog.Float64("heart_rate", reading.HeartRate))

			if g.tickCount%stressCheckEvery == 0 {
				g.checkStressIndicators(reading)
			}
			if g.tickCount%baselineShiftEvery == 0 {
				g.shiftBaselines()
			}
		}
	}
}

// next advances the generator state by one tick and produces a reading. Every
// returned reading is clamped into its channel's valid range by construction.
func (g *Generator) next(now time.Time) model.Reading {
	g.tickCount++

	g.phase += phaseIncrement
	if g.phase > 2*math.Pi {
		g.phase = 0
	}

	// Slow sinusoidal drift shared across channels, plus independent noise.
	tempDrift := math.Sin(g.phase*0.5) * 3.0
	temperature := clamp(g.baseTemp+tempDrift+g.rng.NormFloat64()*tempNoiseSigma, tempMin, tempMax)

	// Humidity moves inversely to the temperature drift.
	humidity := clamp(g.baseHumidity-tempDrift*2.0+g.rng.NormFloat64()*humNoiseSigma, humMin, humMax)

	sound := g.baseSound + g.rng.NormFloat64()*soundNoiseSigma
	if g.rng.Float64() < soundSpikeProb {
		// Door slam, conversation, passing traffic.
		sound += soundSpikeMin + g.rng.Float64()*(soundSpikeMax-soundSpikeMin)
	}
	sound = clamp(sound, soundMin, soundMax)

	// Heart rate follows its own circadian phase multiplier.
	hrCircadian := math.Sin(g.phase*2.0) * 10.0
	heartRate := clamp(g.baseHeartRate+hrCircadian+g.rng.NormFloat64()*hrNoiseSigma, hrMin, hrMax)

	r := model.NewReading(
		round1(temperature),
		round1(humidity),
		math.Round(sound),
		math.Round(heartRate),
	)
	r.Timestamp = now
	return r
}

// checkStressIndicators logs comfort threshold violations. Observability only;
// no generator state is affected.
func (g *Generator) checkStressIndicators(r model.Reading) {
	indicators := r.StressIndicators()
	active := indicators.ActiveCount()
	if active == 0 {
		return
	}

	metrics.StressIndicatorEvents.Inc()
	g.log.Warn("stress indicators detected (non-diagnostic)",
		slog.Int("active", active),
		slog.Bool("high_temperature", indicators.HighTemperature),
		slog.Bool("high_humidity", indicators.HighHumidity),
		slog.Bool("high_noise", indicators.HighNoise),
		slog.Bool("elevated_heart_rate", indicators.ElevatedHeartRate))
}

// shiftBaselines applies a small bounded random walk to the environment
// baselines, modeling long-term drift such as weather or HVAC changes.
func (g *Generator) shiftBaselines() {
	g.baseTemp = clamp(g.baseTemp+(g.rng.Float64()*2.0-1.0), baseTempMin, baseTempMax)
	g.baseHumidity = clamp(g.baseHumidity+(g.rng.Float64()*10.0-5.0), baseHumMin, baseHumMax)

	g.log.Info("environmental baseline shift",
		slog.Float64("base_temperature", g.baseTemp),
		slog.Float64("base_humidity", g.baseHumidity))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// round1 rounds to one decimal place, the display precision for temperature
// and humidity.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
