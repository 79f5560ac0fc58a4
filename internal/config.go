package internal

import "time"

// Config holds the relay server environment. Loaded once in run() via
// env.UnmarshalFromEnviron; required entries fail fast at startup.
type Config struct {
	Host           string        `env:"HOST,default=localhost"`
	Port           int           `env:"PORT,default=8765"`
	BadgerFilepath string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string        `env:"LOG_LEVEL,required=true"`
	DefaultModel   string        `env:"DEFAULT_MODEL,default=claude-haiku-4.5"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT,default=10s"`
}
