package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/retrodesk/desktopd/internal/desktop"
	"github.com/retrodesk/desktopd/internal/domain/ipc"
	"github.com/retrodesk/desktopd/internal/domain/wallpaper"
	"github.com/retrodesk/desktopd/internal/host"
	"github.com/retrodesk/desktopd/internal/infrastructure/logging"
	"github.com/retrodesk/desktopd/internal/infrastructure/monitoring"
)

// ErrStopped is returned when dispatching after the runtime loop exited.
var ErrStopped = errors.New("desktop runtime stopped")

// Services bundles the host dependencies the runtime executes effects
// against.
type Services struct {
	Store    host.StateStore
	Notifier host.Notifier
	Assets   host.WallpaperAssets
	URLs     host.URLOpener
	Sounds   host.SoundPlayer
}

// WithDefaults fills missing services with no-op implementations.
func (s Services) WithDefaults() Services {
	if s.Store == nil {
		s.Store = host.NewMemoryStore()
	}
	if s.Notifier == nil {
		s.Notifier = host.NoopNotifier{}
	}
	if s.Assets == nil {
		s.Assets = host.NewMemoryWallpaperAssets()
	}
	if s.URLs == nil {
		s.URLs = host.NoopURLOpener{}
	}
	if s.Sounds == nil {
		s.Sounds = host.NoopSoundPlayer{}
	}
	return s
}

type dispatchRequest struct {
	action desktop.Action
	reply  chan error
}

type viewRequest struct {
	fn    func(st *desktop.State)
	reply chan struct{}
}

// Runtime owns the desktop state and processes actions serially.
type Runtime struct {
	reducer     *desktop.Reducer
	state       *desktop.State
	interaction *desktop.Interaction
	exec        *executor
	persistence *Persistence
	router      *ipc.Router
	events      *Broadcaster
	log         *logging.Logger
	metrics     *monitoring.Metrics

	// resolver caches wallpaper source lookups against the loaded library.
	// Loop-owned; rebuilt on every library change.
	resolver *wallpaper.Resolver

	dispatches chan dispatchRequest
	views      chan viewRequest
	feedback   chan desktop.Action
	stopped    chan struct{}
}

// New creates a runtime. Missing services default to no-op implementations.
func New(reducer *desktop.Reducer, services Services, log *logging.Logger, metrics *monitoring.Metrics) *Runtime {
	services = services.WithDefaults()
	router := ipc.NewRouter()
	events := NewBroadcaster()
	r := &Runtime{
		reducer:     reducer,
		state:       desktop.NewState(),
		interaction: &desktop.Interaction{},
		persistence: NewPersistence(services.Store),
		router:      router,
		events:      events,
		log:         log,
		metrics:     metrics,
		dispatches:  make(chan dispatchRequest),
		views:       make(chan viewRequest),
		feedback:    make(chan desktop.Action, 64),
		stopped:     make(chan struct{}),
	}
	r.rebuildResolver(r.state.Library)
	r.exec = newExecutor(r, services, router, events, log, metrics)
	return r
}

// wallpaperCacheSize bounds the resolver's source cache.
const wallpaperCacheSize = 64

func (r *Runtime) rebuildResolver(lib wallpaper.Library) {
	resolver, err := wallpaper.NewResolver(lib, wallpaperCacheSize)
	if err != nil {
		r.log.Warn("wallpaper resolver rebuild failed", zap.Error(err))
		return
	}
	r.resolver = resolver
}

// Router exposes the IPC router for API-level inbox reads.
func (r *Runtime) Router() *ipc.Router { return r.router }

// Events exposes the runtime event stream.
func (r *Runtime) Events() *Broadcaster { return r.events }

// Persistence exposes the persistence layer for config reads.
func (r *Runtime) Persistence() *Persistence { return r.persistence }

// Boot hydrates persisted state. Call before Run; nothing else may touch
// the runtime concurrently.
func (r *Runtime) Boot(ctx context.Context, restoreLayout bool) error {
	theme, migratedWallpaper, ok := r.persistence.LoadTheme(ctx)
	if ok {
		r.apply(ctx, desktop.HydrateTheme{Theme: theme})
	}

	if cfg, ok := r.persistence.LoadWallpaper(ctx); ok {
		r.apply(ctx, desktop.HydrateWallpaper{Config: cfg})
	} else if migratedWallpaper != nil {
		r.apply(ctx, desktop.HydrateWallpaper{Config: *migratedWallpaper})
	}

	library, err := r.exec.services.Assets.Library(ctx)
	if err != nil {
		r.log.Warn("wallpaper library load failed, using builtins", zap.Error(err))
	} else {
		r.apply(ctx, desktop.WallpaperLibraryLoaded{Library: library})
	}

	if overlay, ok := r.persistence.LoadPolicy(ctx); ok {
		r.apply(ctx, desktop.HydratePolicy{Overlay: overlay})
	}

	if restoreLayout && r.state.Preferences.RestoreOnBoot {
		if snap, ok, err := r.persistence.LoadLayout(ctx); err != nil {
			r.log.Warn("layout snapshot load failed, starting empty", zap.Error(err))
		} else if ok {
			if history, found := r.persistence.LoadTerminalHistory(ctx); found {
				snap.TerminalHistory = history
			}
			r.apply(ctx, desktop.HydrateSnapshot{Snapshot: snap})
		}
	} else if history, found := r.persistence.LoadTerminalHistory(ctx); found {
		r.state.TerminalHistory = history
	}

	r.log.Info("desktop runtime booted",
		zap.Int("windows", len(r.state.Windows)),
		zap.String("skin", string(r.state.Theme.Skin)),
	)
	return nil
}

// Run processes actions until ctx is canceled. It must be called exactly
// once.
func (r *Runtime) Run(ctx context.Context) {
	defer close(r.stopped)
	for {
		select {
		case <-ctx.Done():
			r.exec.wait()
			return
		case action := <-r.feedback:
			if err := r.apply(ctx, action); err != nil {
				r.log.Warn("feedback action rejected",
					zap.String("action", actionName(action)),
					zap.Error(err))
			}
		case req := <-r.dispatches:
			req.reply <- r.apply(ctx, req.action)
		case req := <-r.views:
			req.fn(r.state)
			close(req.reply)
		}
	}
}

// Dispatch applies an action through the runtime loop and waits for the
// transition result.
func (r *Runtime) Dispatch(ctx context.Context, action desktop.Action) error {
	req := dispatchRequest{action: action, reply: make(chan error, 1)}
	select {
	case r.dispatches <- req:
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue feeds an action back into the loop without waiting. Used by the
// effect executor; drops with a log line when the loop is saturated.
func (r *Runtime) enqueue(action desktop.Action) {
	select {
	case r.feedback <- action:
	case <-r.stopped:
	default:
		r.log.Warn("feedback queue full, dropping action",
			zap.String("action", actionName(action)))
	}
}

// View runs fn inside the loop with read access to the live state. fn must
// not retain references past its return.
func (r *Runtime) View(ctx context.Context, fn func(st *desktop.State)) error {
	req := viewRequest{fn: fn, reply: make(chan struct{})}
	select {
	case r.views <- req:
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a persistable snapshot of the current state.
func (r *Runtime) Snapshot(ctx context.Context) (desktop.Snapshot, error) {
	var snap desktop.Snapshot
	err := r.View(ctx, func(st *desktop.State) {
		snap = st.Snapshot()
	})
	return snap, err
}

// WallpaperView is the renderable wallpaper state served to shells. Sources
// are resolved through the runtime's cached resolver.
type WallpaperView struct {
	Library       wallpaper.Library `json:"library"`
	Featured      []wallpaper.Asset `json:"featured"`
	Current       wallpaper.Config  `json:"current"`
	Preview       *wallpaper.Config `json:"preview,omitempty"`
	Source        *wallpaper.Source `json:"source,omitempty"`
	PreviewSource *wallpaper.Source `json:"preview_source,omitempty"`
}

// Wallpaper assembles the wallpaper view in a single loop pass. The library
// is replaced wholesale on reload, never mutated in place, so sharing its
// slices past the view callback is safe.
func (r *Runtime) Wallpaper(ctx context.Context) (WallpaperView, error) {
	var view WallpaperView
	err := r.View(ctx, func(st *desktop.State) {
		view.Library = st.Library
		view.Featured = st.Library.Featured()
		view.Current = st.Wallpaper
		if st.WallpaperPreview != nil {
			preview := *st.WallpaperPreview
			view.Preview = &preview
			if src, ok := r.resolver.Resolve(preview); ok {
				view.PreviewSource = &src
			}
		}
		if src, ok := r.resolver.Resolve(st.Wallpaper); ok {
			view.Source = &src
		}
	})
	return view, err
}

// apply runs one state transition and executes its effects.
func (r *Runtime) apply(ctx context.Context, action desktop.Action) error {
	start := time.Now()
	effects, err := r.reducer.Reduce(r.state, r.interaction, action)
	if r.metrics != nil {
		r.metrics.RecordAction(actionName(action), time.Since(start), err)
		r.metrics.WindowsOpen.Set(float64(len(r.state.Windows)))
	}
	if err != nil {
		return err
	}
	if len(effects) > 0 {
		r.exec.execute(ctx, effects)
	}
	if loaded, ok := action.(desktop.WallpaperLibraryLoaded); ok {
		r.rebuildResolver(loaded.Library)
	}
	// Zero-effect transitions (start menu toggles, preview clears) still
	// change state the shells render.
	r.events.Publish(Event{Type: EventState})
	return nil
}

func actionName(action desktop.Action) string {
	name := fmt.Sprintf("%T", action)
	return strings.TrimPrefix(name, "desktop.")
}
