package main

// Flag names bound to viper, grouped the way atari's cmd/atari/config.go
// groups its own.
const (
	FlagVerbose = "verbose"
	FlagConfig  = "config"
	FlagLogFile = "log-file"

	FlagInput  = "input"
	FlagEngine = "engine"
	FlagOut    = "out"

	FlagSurfaces = "surfaces"
	FlagEntities = "entities"
	FlagRounds   = "rounds"
)
