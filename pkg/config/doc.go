// Package config loads typed configuration structs from environment
// variables, with an optional .env file for local development.
//
// Config structs declare their variables with `env:` tags:
//
//	type ServerConfig struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":4000"`
//	}
//
//	var cfg ServerConfig
//	config.MustLoad(&cfg)
//
// The .env file is read at most once per process; a missing file is not an
// error. Required variables that are absent fail loading, which MustLoad
// turns into a startup panic.
package config
