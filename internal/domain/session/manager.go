package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"

	"github.com/retrodesk/desktopd/internal/desktop"
	"github.com/retrodesk/desktopd/internal/host"
	"github.com/retrodesk/desktopd/internal/shared/id"
)

const keyPrefix = "retrodesk.session."

// ErrNotFound is returned when a session id has no stored snapshot.
var ErrNotFound = errors.New("session not found")

// Session is a stored workspace snapshot with naming metadata.
type Session struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Snapshot  desktop.Snapshot `json:"snapshot"`
}

// Summary is the listing shape; it omits the snapshot payload.
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	WindowCount int       `json:"window_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Manager persists named sessions through a host state store.
type Manager struct {
	store host.StateStore
	ids   *id.Generator

	mu        sync.RWMutex
	lastSaved *time.Time
}

// NewManager creates a session manager over the given store.
func NewManager(store host.StateStore) *Manager {
	return &Manager{store: store, ids: id.Default()}
}

// Save captures the snapshot under a new session id.
func (m *Manager) Save(ctx context.Context, name string, snap desktop.Snapshot) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:        m.ids.NewPrefixed(id.SessionPrefix),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Snapshot:  snap,
	}
	if err := m.write(ctx, session); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.lastSaved = &now
	m.mu.Unlock()
	return session, nil
}

// Load reads a stored session by id.
func (m *Manager) Load(ctx context.Context, sessionID string) (*Session, error) {
	raw, err := m.store.Get(ctx, keyPrefix+sessionID)
	if errors.Is(err, host.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", sessionID, err)
	}
	return decode(raw)
}

// Delete removes a stored session. Deleting an absent session is a no-op.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.store.Delete(ctx, keyPrefix+sessionID)
}

// List returns summaries of all stored sessions, most recently updated
// first. Corrupt entries are skipped.
func (m *Manager) List(ctx context.Context) ([]Summary, error) {
	keys, err := m.store.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	summaries := make([]Summary, 0, len(keys))
	for _, key := range keys {
		raw, err := m.store.Get(ctx, key)
		if err != nil {
			continue
		}
		session, err := decode(raw)
		if err != nil {
			continue
		}
		summaries = append(summaries, Summary{
			ID:          session.ID,
			Name:        session.Name,
			WindowCount: len(session.Snapshot.Windows),
			CreatedAt:   session.CreatedAt,
			UpdatedAt:   session.UpdatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// LastSaved returns when a session was last saved in this process.
func (m *Manager) LastSaved() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastSaved == nil {
		return time.Time{}, false
	}
	return *m.lastSaved, true
}

func (m *Manager) write(ctx context.Context, session *Session) error {
	raw, err := encode(session)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, keyPrefix+session.ID, raw); err != nil {
		return fmt.Errorf("write session %s: %w", session.ID, err)
	}
	return nil
}

func encode(session *Session) ([]byte, error) {
	payload, err := sonic.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal session %s: %w", session.ID, err)
	}
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := gz.Write(payload); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(raw []byte) (*Session, error) {
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decompress session: %w", err)
	}
	defer gz.Close()
	payload, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompress session: %w", err)
	}
	var session Session
	if err := sonic.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}
