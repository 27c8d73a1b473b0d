// Package config loads pr-summary settings from TOML.
//
// Settings cover the forge (api flavor and hostname), the resolver limits and
// the release-note template. Missing keys keep their defaults.
package config
