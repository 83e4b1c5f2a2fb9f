package fhir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stress-monitor/esms/internal/model"
)

const testPatient = "Patient/esms-monitor-subject"

func sampleReading() model.Reading {
	r := model.NewReading(23.4, 55.2, 310, 78)
	r.Timestamp = time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC)
	return r
}

func TestParseObservationType(t *testing.T) {
	valid := map[string]ObservationType{
		"temperature": Temperature,
		"Temperature": Temperature,
		"humidity":    Humidity,
		"sound":       SoundLevel,
		"soundlevel":  SoundLevel,
		"heartrate":   HeartRate,
		"heart_rate":  HeartRate,
		"HR":          HeartRate,
	}
	for input, want := range valid {
		got, err := ParseObservationType(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	for _, input := range []string{"", "pressure", "temp"} {
		_, err := ParseObservationType(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestToObservation_Temperature(t *testing.T) {
	r := sampleReading()
	obs := ToObservation(r, Temperature, testPatient)

	assert.Equal(t, "Observation", obs.ResourceType)
	assert.Equal(t, "final", obs.Status)
	assert.Equal(t, testPatient, obs.Subject.Reference)
	assert.Equal(t, "2026-08-30T14:30:00Z", obs.EffectiveDateTime)

	require.Len(t, obs.Code.Coding, 1)
	assert.Equal(t, SystemLOINC, obs.Code.Coding[0].System)
	assert.Equal(t, CodeTemperature, obs.Code.Coding[0].Code)

	assert.Equal(t, 23.4, obs.ValueQuantity.Value)
	assert.Equal(t, "Cel", obs.ValueQuantity.Code)
	assert.Equal(t, SystemUCUM, obs.ValueQuantity.System)

	require.Len(t, obs.Category, 1)
	require.Len(t, obs.Category[0].Coding, 1)
	assert.Equal(t, "vital-signs", obs.Category[0].Coding[0].Code)

	require.Len(t, obs.Note, 1)
	assert.Contains(t, obs.Note[0].Text, "does NOT perform diagnosis")
}

func TestToObservation_CustomCodesForEnvironmentalChannels(t *testing.T) {
	r := sampleReading()

	hum := ToObservation(r, Humidity, testPatient)
	assert.Equal(t, SystemESMSCustom, hum.Code.Coding[0].System)
	assert.Equal(t, CodeHumidity, hum.Code.Coding[0].Code)
	assert.Equal(t, "survey", hum.Category[0].Coding[0].Code)
	assert.Equal(t, 55.2, hum.ValueQuantity.Value)

	snd := ToObservation(r, SoundLevel, testPatient)
	assert.Equal(t, CodeSoundLevel, snd.Code.Coding[0].Code)
	assert.Equal(t, 310.0, snd.ValueQuantity.Value)

	hr := ToObservation(r, HeartRate, testPatient)
	assert.Equal(t, SystemLOINC, hr.Code.Coding[0].System)
	assert.Equal(t, CodeHeartRate, hr.Code.Coding[0].Code)
	assert.Equal(t, 78.0, hr.ValueQuantity.Value)
	assert.Equal(t, "/min", hr.ValueQuantity.Code)
}

func TestToObservation_ReferenceRanges(t *testing.T) {
	r := sampleReading()

	temp := ToObservation(r, Temperature, testPatient)
	require.Len(t, temp.ReferenceRange, 1)
	require.NotNil(t, temp.ReferenceRange[0].Low)
	assert.Equal(t, 18.0, temp.ReferenceRange[0].Low.Value)
	assert.Equal(t, 26.0, temp.ReferenceRange[0].High.Value)

	snd := ToObservation(r, SoundLevel, testPatient)
	require.Len(t, snd.ReferenceRange, 1)
	assert.Nil(t, snd.ReferenceRange[0].Low)
	assert.Equal(t, 400.0, snd.ReferenceRange[0].High.Value)
}

func TestToBundle_OneObservationPerChannel(t *testing.T) {
	r := sampleReading()
	bundle := ToBundle(r, testPatient)

	assert.Equal(t, "Bundle", bundle.ResourceType)
	assert.Equal(t, "collection", bundle.Type)
	assert.Equal(t, 4, bundle.Total)
	require.Len(t, bundle.Entry, 4)

	seen := map[string]bool{}
	for _, entry := range bundle.Entry {
		assert.Contains(t, entry.FullURL, "urn:uuid:")
		seen[entry.Resource.Code.Coding[0].Code] = true
	}
	for _, code := range []string{CodeTemperature, CodeHumidity, CodeSoundLevel, CodeHeartRate} {
		assert.True(t, seen[code], "bundle missing code %s", code)
	}
}

func TestCombineBundles(t *testing.T) {
	readings := []model.Reading{sampleReading(), sampleReading(), sampleReading()}
	bundle := CombineBundles(readings, testPatient)

	assert.Equal(t, 12, bundle.Total)
	assert.Len(t, bundle.Entry, 12)

	empty := CombineBundles(nil, testPatient)
	assert.Equal(t, 0, empty.Total)
}
