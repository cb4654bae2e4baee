// Package config loads configuration structs from environment variables.
//
// Structs declare their surface with `env` tags; Load parses the process
// environment into them, reading a .env file first when one exists:
//
//	var cfg dispatch.Config
//	if err := config.Load(&cfg); err != nil {
//	    // handle error
//	}
//
// MustLoad panics instead of returning an error, for configuration the
// process cannot start without.
package config
