// Package host defines the platform services the desktop runtime depends
// on: persisted key-value state, notifications, wallpaper asset storage,
// and external URL opening. Implementations live with the embedding
// platform; this package ships no-op and in-memory variants for headless
// operation and tests.
package host
