// Package file provides TOML-backed configuration: service settings
// loaded at startup and the persistent registry of pages and spaces the
// run command processes.
package file
