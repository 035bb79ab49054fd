// Package config loads the vdiff server configuration.
//
// The configuration is stored in vdiff.json or vdiff.yaml. Missing fields
// take defaults, VDIFF_ADDR and VDIFF_LOG_LEVEL override the file, and the
// result is validated with go-playground/validator struct tags.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": ":7070",
//	    "read_timeout": "10s",
//	    "write_timeout": "10s",
//	    "shutdown_timeout": "15s",
//	    "max_message_bytes": 4194304
//	  },
//	  "snapshot": {
//	    "backend": "bolt",
//	    "bolt_path": "/var/lib/vdiff/snapshots.db"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "vdiff",
//	    "path": "/metrics"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "json"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Server.Addr)
package config
