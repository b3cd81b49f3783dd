// Package config loads and validates application configuration from
// environment variables and an optional YAML file. Environment variables
// (STYLEFORGE_ prefix) take precedence over file values.
package config
