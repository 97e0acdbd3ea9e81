// Package id provides centralized ID generation for the desktop runtime.
//
// Session and imported-asset identifiers are prefixed ULIDs: lexicographically
// sortable, debuggable in logs, and unique without coordination. Window ids are
// deliberately not ULIDs; the reducer assigns them monotonically so state
// transitions stay deterministic and replayable.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	SessionPrefix = "sess"
	AssetPrefix   = "asset"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator with secure entropy.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// New generates a bare ULID string.
func (g *Generator) New() string {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// NewPrefixed generates a prefixed ULID such as "sess_01J...".
func (g *Generator) NewPrefixed(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.New())
}

// Session generates a session identifier.
func Session() string { return Default().NewPrefixed(SessionPrefix) }

// Asset generates an imported wallpaper asset identifier.
func Asset() string { return Default().NewPrefixed(AssetPrefix) }

// Correlation generates a correlation id for IPC request/reply pairing.
func Correlation() string { return uuid.NewString() }
