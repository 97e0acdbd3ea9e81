// Package apps maintains the application registry: the built-in system app
// catalog, TOML manifest loading for external apps, launcher search, and
// legacy app id compatibility.
package apps
