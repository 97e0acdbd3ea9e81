// Package wallpaper defines wallpaper selection, the built-in catalog, and the
// merged asset library used by the desktop runtime. The package is pure data
// and validation; asset bytes are resolved by a host-provided service.
package wallpaper
