// Package config provides configuration parsing for the reactive CLI and
// devtools server.
//
// The configuration is stored in reactive.json. Every field is optional;
// missing fields take the defaults returned by New.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "debug": {
//	    "logEffectRuns": true,
//	    "logRecomputes": true,
//	    "logFanOuts": false
//	  },
//	  "metrics": {
//	    "namespace": "reactive",
//	    "subsystem": "editor"
//	  },
//	  "devtools": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "eventBuffer": 256
//	  }
//	}
//
// REACTIVE_LOG_LEVEL and REACTIVE_DEVTOOLS_PORT override the file.
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	logger := cfg.Logger(os.Stderr)
package config
