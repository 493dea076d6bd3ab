// Package config loads and validates the stacklift configuration.
//
// A configuration file describes one stack (name, region, template,
// inspected resources) plus per-environment settings: budget ceiling and
// data-retention policy. Timeout and retry tuning is read from environment
// variables, see [LoadTimeouts].
package config
