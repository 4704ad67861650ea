// Package config provides configuration structures and utilities for mediclaim.
// It defines the analysis service endpoint, transport options, synthetic
// progress settings and report output preferences, and loads overrides from
// a YAML file and the environment.
package config
