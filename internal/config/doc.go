// Package config parses command-line flags and CAPPLAN_* environment
// variables into an AppConfig, and loads per-model parameter files.
//
// Priority, highest first: CLI flags, environment variables, defaults.
package config
