// Package config loads the pyro configuration file.
//
// The file is YAML:
//
//	store:
//	  path: ~/notes/documents.db
//	  backend: sqlite        # sqlite | json | archive
//	log:
//	  level: warn            # debug | info | warn | error
//	  format: text           # text | json
//
// Missing fields take their defaults, then the result is checked against the
// embedded CUE schema in schema.cue.
package config
