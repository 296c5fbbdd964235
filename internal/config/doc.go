// Package config loads process configuration from the environment.
package config
