// Package config loads and validates the CHMS core configuration.
//
// Configuration comes from three layers, each overriding the previous:
// hardcoded defaults, a YAML file, and CHMS_* environment variables.
// Call Load with the path to the YAML file; the returned Config has
// already passed validation.
package config
