// Package config loads, normalizes, and validates shotmaster
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such
// as KLING_ACCESS_KEY. The Config type centralizes every knob the CLI
// needs: the project root, the settings database, the generation
// provider endpoint, polling budgets, and log output.
package config
