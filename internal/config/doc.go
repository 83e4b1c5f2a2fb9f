// Package config implements configuration loading for the monitoring service.
//
// Configuration merges three layers: compiled-in defaults, ESMS_* environment
// variable overrides, and an optional config.json file, validated as a whole
// before use.
package config
