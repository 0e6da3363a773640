// Package entities registers all import targets with the core registry.
// Import this package for its side effects.
package entities

// Each entity file uses init() to register its definitions.
