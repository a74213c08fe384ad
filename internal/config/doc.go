// Package config holds the immutable settings for a setup-vals run.
//
// A Config is built once at process start from compiled-in defaults, an
// optional YAML override file, and a small set of runner environment
// variables. It is then passed by value into the resolver, the archive
// locator and the installer, so none of them read package-level state.
//
// # Sources
//
// Settings are applied in this order, later sources winning:
//  1. Default() - the values the action ships with
//  2. GITHUB_SERVER_URL, so GitHub Enterprise runners download from their own host
//  3. the YAML file named by --config (fields that are present only)
//
// # Example override file
//
//	repository: my-org/vals
//	defaultVersion: v0.41.3
//	serverURL: https://github.example.com
//	http:
//	  timeout: 2m
//	  retries: 5
package config
