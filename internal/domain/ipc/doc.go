// Package ipc routes topic-scoped events between app windows. Windows
// subscribe to versioned topics and receive published events through
// bounded per-window inboxes.
package ipc
