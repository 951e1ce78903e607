// Package config provides configuration parsing for navguard applications.
//
// The configuration is stored in navguard.json (or navguard.toml) at the
// project root. This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "name": "thumbnails",
//	  "routes": "routes.yaml",
//	  "middleware": {
//	    "global": ["locale", "check-auth"]
//	  },
//	  "data": {
//	    "key": "data"
//	  },
//	  "navigation": {
//	    "maxRedirects": 10
//	  },
//	  "locale": {
//	    "default": "en",
//	    "supported": ["en", "de"]
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "navguard"
//	  },
//	  "tracing": {
//	    "tracerName": "navguard"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// The TOML file uses the same keys:
//
//	name = "thumbnails"
//
//	[middleware]
//	global = ["locale"]
//
//	[server]
//	port = 8080
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
