// Package fhir converts sensor readings into FHIR R4 Observation and Bundle
// resources for healthcare interoperability.
//
// LOINC code mappings:
//   - Temperature: 8310-5 (Body temperature)
//   - Heart rate: 8867-4 (Heart rate)
//   - Humidity, sound level: custom environmental codes (no standard LOINC)
//
// Conversion is a pure, stateless projection of a reading; it performs no I/O.
package fhir
