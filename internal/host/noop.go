package host

import "context"

// NoopNotifier discards notifications.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, string, string) error { return nil }

// NoopURLOpener accepts every URL without opening anything. Used headless
// where there is no platform browser.
type NoopURLOpener struct{}

func (NoopURLOpener) OpenURL(context.Context, string) error { return nil }

// NoopSoundPlayer swallows sound cues.
type NoopSoundPlayer struct{}

func (NoopSoundPlayer) Play(context.Context, string) error { return nil }
