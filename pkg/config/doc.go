// Package config handles configuration management for lnedit.
// It layers the embedded defaults, the user's TOML file and LNEDIT_*
// environment variables, in that order.
package config
