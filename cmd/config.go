package main

import "time"

type Config struct {
	NumberOfShards  int           `env:"NUMBER_OF_SHARDS,default=4"`
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=1s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	SettleInterval  time.Duration `env:"SETTLE_INTERVAL,default=5ms"`
	SettleTimeout   time.Duration `env:"SETTLE_TIMEOUT,default=5s"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath   string        `env:"BLUGE_FILEPATH"`
	SearchLimit     int           `env:"SEARCH_LIMIT,default=50"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	DebugPort       int           `env:"DEBUG_PORT,default=8081"`
}
