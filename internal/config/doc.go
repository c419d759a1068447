// Package config loads, normalizes, and validates tvscribe configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for object
// storage credentials. The Config type centralizes every knob the daemon and
// CLI need: channel descriptors, segment timing, queue and worker sizing,
// transcriber settings, retention windows, and log output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical values, and clear validation errors.
package config
