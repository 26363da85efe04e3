// Package config loads, normalizes, and validates harness configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// harness needs: the fakes3 service endpoint and state directories, the
// package preparation steps, the default workload command, and log routing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
