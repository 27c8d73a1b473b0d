// Package runtime provides the execution context for pr-summary commands.
//
// It bundles the logger, the loaded configuration and the forge client so
// commands receive one value instead of wiring them by hand.
package runtime
