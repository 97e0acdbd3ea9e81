// Package types defines shared data structures used across the desktop runtime.
package types
