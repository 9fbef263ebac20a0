// Package config loads, validates, and materializes podium configuration.
package config
