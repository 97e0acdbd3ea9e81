// Package session saves and restores named workspace snapshots. Snapshots
// are gzip-compressed layout payloads stored through the host state store,
// independent of the boot-time auto-restore path.
package session
