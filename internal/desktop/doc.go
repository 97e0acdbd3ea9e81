// Package desktop holds the shell runtime state model and the pure reducer
// that drives window management, theming, wallpaper, and app command
// handling. The reducer mutates state and returns side-effect intents; it
// never performs I/O itself.
package desktop
