// Package config provides configuration loading for the filtersync server.
//
// The configuration is stored in filtersync.json in the working directory.
// Every setting can be overridden with a FILTERSYNC_* environment variable.
//
// # Configuration File Structure
//
//	{
//	  "address": "localhost:8080",
//	  "logLevel": "info",
//	  "defaults": {"status": "open", "page": 1},
//	  "session": {
//	    "maxMessageSize": 65536,
//	    "handshakeTimeout": "10s"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "filtersync"
//	  }
//	}
//
// # Environment
//
//	FILTERSYNC_ADDRESS             overrides address
//	FILTERSYNC_LOG_LEVEL           overrides logLevel
//	FILTERSYNC_DEFAULTS            overrides defaults, as a query string
//	FILTERSYNC_METRICS             overrides metrics.enabled
//	FILTERSYNC_METRICS_NAMESPACE   overrides metrics.namespace
//
// # Usage
//
//	cfg, err := config.LoadFromDir(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address)
package config
