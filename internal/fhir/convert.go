package fhir

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stress-monitor/esms/internal/model"
)

// LOINC and custom observation codes.
const (
	CodeTemperature    = "8310-5"
	DisplayTemperature = "Body temperature"
	CodeHeartRate      = "8867-4"
	DisplayHeartRate   = "Heart rate"
	CodeHumidity       = "ESMS-ENV-001"
	DisplayHumidity    = "Environmental humidity"
	CodeSoundLevel     = "ESMS-ENV-002"
	DisplaySoundLevel  = "Ambient sound level"
)

// Coding system URLs.
const (
	SystemLOINC      = "http://loinc.org"
	SystemESMSCustom = "http://esms.local/fhir/CodeSystem/environmental"
	SystemUCUM       = "http://unitsofmeasure.org"
	SystemCategory   = "http://terminology.hl7.org/CodeSystem/observation-category"
)

const disclaimerNote = "This observation is from the Environmental Stress Monitoring System. " +
	"It identifies environmental and physiological conditions that correlate " +
	"with stress and discomfort. It does NOT perform diagnosis and is intended " +
	"as an early-warning monitoring tool."

// ObservationType selects which reading channel an Observation describes.
type ObservationType int

const (
	Temperature ObservationType = iota
	Humidity
	SoundLevel
	HeartRate
)

// ParseObservationType maps URL path spellings to an ObservationType.
func ParseObservationType(s string) (ObservationType, error) {
	switch strings.ToLower(s) {
	case "temperature":
		return Temperature, nil
	case "humidity":
		return Humidity, nil
	case "sound", "soundlevel":
		return SoundLevel, nil
	case "heartrate", "heart_rate", "hr":
		return HeartRate, nil
	default:
		return 0, fmt.Errorf("invalid observation type: %s. Valid types: temperature, humidity, sound, heartrate", s)
	}
}

func (t ObservationType) String() string {
	switch t {
	case Temperature:
		return "temperature"
	case Humidity:
		return "humidity"
	case SoundLevel:
		return "soundlevel"
	case HeartRate:
		return "heartrate"
	default:
		return "unknown"
	}
}

func (t ObservationType) code() (system, code, display string) {
	switch t {
	case Temperature:
		return SystemLOINC, CodeTemperature, DisplayTemperature
	case HeartRate:
		return SystemLOINC, CodeHeartRate, DisplayHeartRate
	case Humidity:
		return SystemESMSCustom, CodeHumidity, DisplayHumidity
	default:
		return SystemESMSCustom, CodeSoundLevel, DisplaySoundLevel
	}
}

func (t ObservationType) unit() (code, display string) {
	switch t {
	case Temperature:
		return "Cel", "°C"
	case Humidity:
		return "%", "%"
	case SoundLevel:
		return "1", "units"
	default:
		return "/min", "beats/minute"
	}
}

func (t ObservationType) category() string {
	switch t {
	case Temperature, HeartRate:
		return "vital-signs"
	default:
		return "survey"
	}
}

func (t ObservationType) value(r model.Reading) float64 {
	switch t {
	case Temperature:
		return r.Temperature
	case Humidity:
		return r.Humidity
	case SoundLevel:
		return r.Sound
	default:
		return r.HeartRate
	}
}

func (t ObservationType) deviceDisplay() string {
	switch t {
	case Temperature, Humidity:
		return "DHT11 Temperature and Humidity Sensor"
	case SoundLevel:
		return "Sound Level Sensor Module"
	default:
		return "MAX30100 Pulse Oximeter and Heart Rate Sensor"
	}
}

// Observation is a FHIR R4 Observation resource.
type Observation struct {
	ResourceType      string            `json:"resourceType"`
	ID                string            `json:"id"`
	Meta              Meta              `json:"meta"`
	Status            string            `json:"status"`
	Category          []CodeableConcept `json:"category"`
	Code              CodeableConcept   `json:"code"`
	Subject           Reference         `json:"subject"`
	EffectiveDateTime string            `json:"effectiveDateTime"`
	Issued            string            `json:"issued"`
	ValueQuantity     Quantity          `json:"valueQuantity"`
	ReferenceRange    []ReferenceRange  `json:"referenceRange,omitempty"`
	Device            *Reference        `json:"device,omitempty"`
	Note              []Annotation      `json:"note,omitempty"`
}

// Meta holds FHIR resource metadata.
type Meta struct {
	VersionID   string   `json:"versionId"`
	LastUpdated string   `json:"lastUpdated"`
	Profile     []string `json:"profile"`
}

// CodeableConcept is a coded FHIR value.
type CodeableConcept struct {
	Coding []Coding `json:"coding"`
	Text   string   `json:"text,omitempty"`
}

// Coding is a single code from a coding system.
type Coding struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

// Reference points to another FHIR resource.
type Reference struct {
	Reference string `json:"reference"`
	Display   string `json:"display,omitempty"`
}

// Quantity is a measured value with UCUM units.
type Quantity struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	System string  `json:"system"`
	Code   string  `json:"code"`
}

// ReferenceRange describes the expected value band for an observation.
type ReferenceRange struct {
	Low  *Quantity `json:"low,omitempty"`
	High *Quantity `json:"high,omitempty"`
	Text string    `json:"text,omitempty"`
}

// Annotation is a FHIR note.
type Annotation struct {
	Text string `json:"text"`
	Time string `json:"time"`
}

// Bundle is a FHIR R4 Bundle resource.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	Timestamp    string        `json:"timestamp"`
	Total        int           `json:"total"`
	Entry        []BundleEntry `json:"entry"`
}

// BundleEntry wraps one resource inside a bundle.
type BundleEntry struct {
	FullURL  string      `json:"fullUrl"`
	Resource Observation `json:"resource"`
}

// ToObservation converts one channel of a reading into a FHIR Observation.
func ToObservation(r model.Reading, obsType ObservationType, patientReference string) Observation {
	system, code, display := obsType.code()
	unitCode, unitDisplay := obsType.unit()
	now := time.Now().UTC().Format(time.RFC3339)

	return Observation{
		ResourceType: "Observation",
		ID:           fmt.Sprintf("%s_%s", r.ID, obsType),
		Meta: Meta{
			VersionID:   "1",
			LastUpdated: now,
			Profile:     []string{"http://hl7.org/fhir/StructureDefinition/Observation"},
		},
		Status: "final",
		Category: []CodeableConcept{{
			Coding: []Coding{{
				System:  SystemCategory,
				Code:    obsType.category(),
				Display: obsType.category(),
			}},
		}},
		Code: CodeableConcept{
			Coding: []Coding{{System: system, Code: code, Display: display}},
			Text:   display,
		},
		Subject: Reference{
			Reference: patientReference,
			Display:   "ESMS Monitoring Subject",
		},
		EffectiveDateTime: r.Timestamp.Format(time.RFC3339),
		Issued:            now,
		ValueQuantity: Quantity{
			Value:  obsType.value(r),
			Unit:   unitDisplay,
			System: SystemUCUM,
			Code:   unitCode,
		},
		ReferenceRange: referenceRange(obsType),
		Device: &Reference{
			Reference: fmt.Sprintf("Device/esms-sensor-%s", obsType),
			Display:   obsType.deviceDisplay(),
		},
		Note: []Annotation{{Text: disclaimerNote, Time: now}},
	}
}

// ToBundle converts a reading into a collection Bundle with one Observation
// per channel.
func ToBundle(r model.Reading, patientReference string) Bundle {
	observations := []Observation{
		ToObservation(r, Temperature, patientReference),
		ToObservation(r, Humidity, patientReference),
		ToObservation(r, SoundLevel, patientReference),
		ToObservation(r, HeartRate, patientReference),
	}

	entries := make([]BundleEntry, 0, len(observations))
	for _, obs := range observations {
		entries = append(entries, BundleEntry{
			FullURL:  fmt.Sprintf("urn:uuid:%s", obs.ID),
			Resource: obs,
		})
	}

	return Bundle{
		ResourceType: "Bundle",
		ID:           uuid.NewString(),
		Type:         "collection",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Total:        len(entries),
		Entry:        entries,
	}
}

// CombineBundles flattens per-reading bundles into one collection Bundle.
func CombineBundles(readings []model.Reading, patientReference string) Bundle {
	var entries []BundleEntry
	for _, r := range readings {
		entries = append(entries, ToBundle(r, patientReference).Entry...)
	}

	return Bundle{
		ResourceType: "Bundle",
		ID:           uuid.NewString(),
		Type:         "collection",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Total:        len(entries),
		Entry:        entries,
	}
}

func referenceRange(obsType ObservationType) []ReferenceRange {
	q := func(value float64, unit, code string) *Quantity {
		return &Quantity{Value: value, Unit: unit, System: SystemUCUM, Code: code}
	}

	switch obsType {
	case Temperature:
		return []ReferenceRange{{
			Low:  q(18.0, "°C", "Cel"),
			High: q(26.0, "°C", "Cel"),
			Text: "Comfortable room temperature range",
		}}
	case Humidity:
		return []ReferenceRange{{
			Low:  q(30.0, "%", "%"),
			High: q(60.0, "%", "%"),
			Text: "Comfortable humidity range",
		}}
	case HeartRate:
		return []ReferenceRange{{
			Low:  q(60.0, "beats/minute", "/min"),
			High: q(100.0, "beats/minute", "/min"),
			Text: "Normal resting heart rate range",
		}}
	default:
		return []ReferenceRange{{
			High: q(400.0, "units", "1"),
			Text: "Comfortable ambient noise level",
		}}
	}
}
