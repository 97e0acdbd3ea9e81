package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retrodesk/desktopd/internal/desktop"
	"github.com/retrodesk/desktopd/internal/domain/apps"
	"github.com/retrodesk/desktopd/internal/domain/policy"
	"github.com/retrodesk/desktopd/internal/domain/session"
	"github.com/retrodesk/desktopd/internal/host"
	"github.com/retrodesk/desktopd/internal/infrastructure/logging"
	"github.com/retrodesk/desktopd/internal/runtime"
	"github.com/retrodesk/desktopd/internal/shared/types"
)

const maxActionBody = 1 << 20

// Handlers contains the REST handlers for the desktop runtime.
type Handlers struct {
	runtime  *runtime.Runtime
	registry *apps.Registry
	sessions *session.Manager
	log      *logging.Logger
	started  time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(rt *runtime.Runtime, registry *apps.Registry, sessions *session.Manager, log *logging.Logger) *Handlers {
	return &Handlers{
		runtime:  rt,
		registry: registry,
		sessions: sessions,
		log:      log,
		started:  time.Now(),
	}
}

// Root reports service identity.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "desktopd",
	})
}

// Health reports a detailed health snapshot.
func (h *Handlers) Health(c *gin.Context) {
	var windows int
	err := h.runtime.View(c.Request.Context(), func(st *desktop.State) {
		windows = len(st.Windows)
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "stopped"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"windows":        windows,
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}

// State returns the full desktop state for shell rendering. The state is
// serialized inside the runtime loop so no live references escape.
func (h *Handlers) State(c *gin.Context) {
	var (
		raw      []byte
		marshals error
	)
	err := h.runtime.View(c.Request.Context(), func(st *desktop.State) {
		raw, marshals = sonic.Marshal(st)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if marshals != nil {
		h.fail(c, marshals)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// DispatchAction decodes and applies one client action.
func (h *Handlers) DispatchAction(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxActionBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	action, err := DecodeAction(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.runtime.Dispatch(c.Request.Context(), action); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": true})
}

// WindowInbox drains and returns the pending IPC events for a window.
func (h *Handlers) WindowInbox(c *gin.Context) {
	var id desktop.WindowID
	if err := bindWindowID(c, &id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	router := h.runtime.Router()
	events := router.Drain(uint64(id))
	c.JSON(http.StatusOK, gin.H{
		"events":  events,
		"dropped": router.Dropped(uint64(id)),
	})
}

// ListApps lists registered apps, optionally filtered by surface.
func (h *Handlers) ListApps(c *gin.Context) {
	var list []types.AppDescriptor
	switch c.Query("surface") {
	case "launcher":
		list = h.registry.LauncherApps()
	case "desktop":
		list = h.registry.DesktopIconApps()
	case "taskbar":
		list = h.registry.PinnedTaskbarApps()
	default:
		list = h.registry.All()
	}
	c.JSON(http.StatusOK, gin.H{"apps": list})
}

// SearchApps performs fuzzy app search for the launcher.
func (h *Handlers) SearchApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"apps": h.registry.Search(c.Query("q"))})
}

// WallpaperLibrary returns the merged wallpaper library with the featured
// shortlist and the resolved render sources.
func (h *Handlers) WallpaperLibrary(c *gin.Context) {
	view, err := h.runtime.Wallpaper(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	raw, err := sonic.Marshal(view)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// SaveSession persists a named snapshot of the current layout.
func (h *Handlers) SaveSession(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := h.runtime.Snapshot(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	saved, err := h.sessions.Save(c.Request.Context(), body.Name, snap)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": saved})
}

// ListSessions lists saved sessions, newest first.
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions, err := h.sessions.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession returns one saved session including its snapshot.
func (h *Handlers) GetSession(c *gin.Context) {
	loaded, err := h.sessions.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": loaded})
}

// RestoreSession replaces the live layout with a saved snapshot.
func (h *Handlers) RestoreSession(c *gin.Context) {
	loaded, err := h.sessions.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	err = h.runtime.Dispatch(c.Request.Context(), desktop.HydrateSnapshot{Snapshot: loaded.Snapshot})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored": loaded.ID})
}

// DeleteSession removes a saved session.
func (h *Handlers) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// GetPolicy returns the live capability policy overlay.
func (h *Handlers) GetPolicy(c *gin.Context) {
	var overlay map[string][]types.Capability
	err := h.runtime.View(c.Request.Context(), func(st *desktop.State) {
		if len(st.PolicyOverlay) == 0 {
			return
		}
		overlay = make(map[string][]types.Capability, len(st.PolicyOverlay))
		for appID, caps := range st.PolicyOverlay {
			overlay[appID] = append([]types.Capability(nil), caps...)
		}
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overlay": overlay})
}

// PutPolicy replaces the capability policy overlay and persists it. Grants
// with unknown capability names are dropped.
func (h *Handlers) PutPolicy(c *gin.Context) {
	var body struct {
		Overlay map[string][]string `json:"overlay"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	overlay := policy.OverlayFromGrants(body.Overlay)
	ctx := c.Request.Context()
	if err := h.runtime.Dispatch(ctx, desktop.HydratePolicy{Overlay: overlay}); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.runtime.Persistence().SavePolicy(ctx, overlay); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overlay": overlay})
}

// GetConfigValue returns one persisted app config value.
func (h *Handlers) GetConfigValue(c *gin.Context) {
	raw, err := h.runtime.Persistence().LoadConfigValue(
		c.Request.Context(), c.Param("namespace"), c.Param("key"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

func bindWindowID(c *gin.Context, id *desktop.WindowID) error {
	parsed, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid window id %q", c.Param("id"))
	}
	*id = desktop.WindowID(parsed)
	return nil
}

func (h *Handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, desktop.ErrWindowNotFound),
		errors.Is(err, desktop.ErrAppNotRegistered),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, host.ErrKeyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, desktop.ErrInvalidGeometry):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, runtime.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
