// Package sensor implements the stochastic signal generator, the primary
// producer of readings in the system.
//
// The generator models four loosely correlated, slowly drifting physical
// quantities: DHT11-style temperature and humidity, an analog sound level
// sensor, and a MAX30100-style heart rate sensor. Real hardware can later
// replace it without touching the rest of the service.
package sensor
