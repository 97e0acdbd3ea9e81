package desktop

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/retrodesk/desktopd/internal/domain/wallpaper"
	"github.com/retrodesk/desktopd/internal/shared/types"
)

// Catalog resolves application descriptors for the reducer. The app registry
// implements it.
type Catalog interface {
	Descriptor(appID string) (types.AppDescriptor, bool)
	DefaultOpenRequest(appID string, viewport *Rect) (OpenWindowRequest, bool)
	// CanonicalAppID resolves a serialized app id, accepting legacy bare
	// names from pre-namespacing snapshots, and reports whether the result
	// is registered.
	CanonicalAppID(raw string) (string, bool)
}

// Gate decides whether an app may exercise a capability. The policy gate
// implements it; overlay grants live in the state itself.
type Gate interface {
	Allow(st *State, appID string, capability types.Capability) bool
}

// Reducer is the authoritative state transition engine for the desktop
// shell. Reduce mutates the supplied state and returns the side-effect
// intents the runtime must execute.
type Reducer struct {
	catalog Catalog
	gate    Gate
}

// NewReducer builds a reducer over the given app catalog and capability
// gate.
func NewReducer(catalog Catalog, gate Gate) *Reducer {
	return &Reducer{catalog: catalog, gate: gate}
}

// Reduce applies one action. On error the state is left unchanged for
// lookup-style failures; effects already collected by nested transitions are
// discarded by the caller.
func (r *Reducer) Reduce(st *State, in *Interaction, action Action) ([]Effect, error) {
	var effects []Effect
	var err error

	switch act := action.(type) {
	case ActivateApp:
		return r.activateApp(st, in, act)
	case OpenWindow:
		effects, err = r.openWindow(st, act.Request)
	case CloseWindow:
		effects, err = r.closeWindow(st, act.WindowID)
	case FocusWindow:
		effects, err = r.focusWindow(st, act.WindowID)
	case MinimizeWindow:
		effects, err = r.minimizeWindow(st, act.WindowID)
	case MaximizeWindow:
		effects, err = r.maximizeWindow(st, act.WindowID, act.Viewport)
	case RestoreWindow:
		effects, err = r.restoreWindow(st, act.WindowID)
	case ToggleTaskbarWindow:
		return r.toggleTaskbarWindow(st, in, act.WindowID)
	case ToggleStartMenu:
		st.StartMenuOpen = !st.StartMenuOpen
	case CloseStartMenu:
		st.StartMenuOpen = false
	case BeginMove:
		effects, err = beginMove(st, in, act)
	case UpdateMove:
		err = updateMove(st, in, act.Pointer)
	case EndMove:
		in.Dragging = nil
		effects = append(effects, EffectPersistLayout{})
	case EndMoveWithViewport:
		if in.Dragging != nil {
			SnapToViewportEdge(st, in.Dragging.WindowID, act.Viewport)
		}
		in.Dragging = nil
		effects = append(effects, EffectPersistLayout{})
	case BeginResize:
		effects, err = beginResize(st, in, act)
	case UpdateResize:
		err = updateResize(st, in, act.Pointer)
	case EndResize:
		in.Resizing = nil
		effects = append(effects, EffectPersistLayout{})
	case SuspendWindow:
		effects, err = suspendWindow(st, act.WindowID)
	case ResumeWindow:
		effects, err = resumeWindow(st, act.WindowID)
	case HandleAppCommand:
		return r.handleAppCommand(st, in, act)
	case SetSkin:
		st.Theme.Skin = act.Skin
		effects = append(effects, EffectPersistTheme{})
	case SetCurrentWallpaper:
		cfg, verr := wallpaper.Validate(act.Config, st.Library)
		if verr != nil {
			return nil, verr
		}
		st.Wallpaper = cfg
		st.WallpaperPreview = nil
		effects = append(effects, EffectPersistWallpaper{})
	case PreviewWallpaper:
		cfg, verr := wallpaper.Validate(act.Config, st.Library)
		if verr != nil {
			return nil, verr
		}
		st.WallpaperPreview = &cfg
	case ApplyWallpaperPreview:
		if st.WallpaperPreview != nil {
			cfg, verr := wallpaper.Validate(*st.WallpaperPreview, st.Library)
			if verr != nil {
				return nil, verr
			}
			st.Wallpaper = cfg
			st.WallpaperPreview = nil
			effects = append(effects, EffectPersistWallpaper{})
		}
	case ClearWallpaperPreview:
		st.WallpaperPreview = nil
	case HydrateTheme:
		st.Theme = act.Theme
	case HydrateWallpaper:
		st.Wallpaper = act.Config.Canonicalize()
		st.WallpaperPreview = nil
		// A persisted imported wallpaper cannot resolve until the host
		// library is loaded; ask for a reload instead of degrading here.
		if _, ok := st.Library.Resolve(st.Wallpaper); !ok {
			effects = append(effects, EffectLoadWallpaperLibrary{})
		}
	case WallpaperLibraryLoaded:
		st.Library = act.Library
		normalizeWallpaperState(st)
	case SetHighContrast:
		st.Theme.HighContrast = act.Enabled
		effects = append(effects, EffectPersistTheme{})
	case SetReducedMotion:
		st.Theme.ReducedMotion = act.Enabled
		effects = append(effects, EffectPersistTheme{})
	case SetAudioEnabled:
		st.Theme.AudioEnabled = act.Enabled
		effects = append(effects, EffectPersistTheme{})
	case PushTerminalHistory:
		effects = pushTerminalHistory(st, act.Command)
	case SetAppState:
		win, ok := st.Window(act.WindowID)
		if !ok {
			return nil, ErrWindowNotFound
		}
		win.AppState = act.AppState
		effects = append(effects, EffectPersistLayout{})
	case SetSharedAppState:
		if st.AppSharedState == nil {
			st.AppSharedState = make(map[string]json.RawMessage)
		}
		st.AppSharedState[act.AppID+":"+strings.TrimSpace(act.Key)] = act.State
		effects = append(effects, EffectPersistLayout{})
	case HydrateSnapshot:
		effects = r.hydrateSnapshot(st, act.Snapshot)
	case HydratePolicy:
		st.PolicyOverlay = act.Overlay
	case ApplyDeepLink:
		effects = append(effects, EffectParseAndOpenDeepLink{DeepLink: act.DeepLink})
	case EffectFailed:
		effects = append(effects, EffectNotify{
			Title: "Desktop",
			Body:  fmt.Sprintf("background task %s failed: %s", act.Effect, act.Reason),
		})
	default:
		return nil, fmt.Errorf("unsupported action type %T", action)
	}

	if err != nil {
		return nil, err
	}
	NormalizeStack(st)
	return effects, nil
}

func (r *Reducer) activateApp(st *State, in *Interaction, act ActivateApp) ([]Effect, error) {
	descriptor, ok := r.catalog.Descriptor(act.AppID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAppNotRegistered, act.AppID)
	}

	if descriptor.SingleInstance {
		if id, found := preferredWindowForApp(st, act.AppID); found {
			win, _ := st.Window(id)
			if win.Minimized {
				return r.Reduce(st, in, RestoreWindow{WindowID: id})
			}
			if focused, ok := st.FocusedWindowID(); !ok || focused != id {
				return r.Reduce(st, in, FocusWindow{WindowID: id})
			}
			return nil, nil
		}
	}

	req, ok := r.catalog.DefaultOpenRequest(act.AppID, act.Viewport)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAppNotRegistered, act.AppID)
	}
	return r.Reduce(st, in, OpenWindow{Request: req})
}

func (r *Reducer) openWindow(st *State, req OpenWindowRequest) ([]Effect, error) {
	descriptor, ok := r.catalog.Descriptor(req.AppID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAppNotRegistered, req.AppID)
	}

	previousFocus, hadFocus := st.FocusedWindowID()
	id := WindowID(st.NextWindowID)
	st.NextWindowID++

	offset := (int(id) - 1) % 8 * 20
	viewport := DefaultViewport()
	if req.Viewport != nil {
		viewport = *req.Viewport
	}
	rect := Rect{X: 40 + offset, Y: 48 + offset, W: DefaultWindowWidth, H: DefaultWindowHeight}
	if req.Rect != nil {
		rect = *req.Rect
	}
	rect = rect.Offset(offset/2, offset/2).ClampedMin(MinWindowWidth, MinWindowHeight)
	rect = clampRectToViewport(rect, viewport)

	title := req.Title
	if title == "" {
		title = descriptor.DisplayName
	}
	iconID := req.IconID
	if iconID == "" {
		iconID = descriptor.IconID
	}

	st.Windows = append(st.Windows, WindowRecord{
		ID:           id,
		AppID:        req.AppID,
		Title:        title,
		IconID:       iconID,
		Rect:         rect,
		Flags:        req.Flags,
		PersistKey:   req.PersistKey,
		AppState:     req.AppState,
		LaunchParams: req.LaunchParams,
	})
	raiseAndFocus(st, id)
	st.StartMenuOpen = false

	var effects []Effect
	recordLifecycle(st, id, LifecycleMounted)
	effects = append(effects, EffectDispatchLifecycle{WindowID: id, Event: LifecycleMounted})
	effects = emitFocusTransition(st, effects, previousFocus, hadFocus, id, true)
	effects = append(effects, EffectPersistLayout{}, EffectFocusWindowInput{WindowID: id})
	if req.AppID == "system.dialup" && st.Theme.AudioEnabled {
		effects = append(effects, EffectPlaySound{Sound: "dialup-open"})
	}
	NormalizeStack(st)
	return effects, nil
}

func (r *Reducer) closeWindow(st *State, id WindowID) ([]Effect, error) {
	idx := st.windowIndex(id)
	if idx < 0 {
		// Closing an already closed window is a no-op.
		return nil, nil
	}

	wasFocused := st.Windows[idx].Focused
	var effects []Effect
	effects = append(effects, EffectDispatchLifecycle{WindowID: id, Event: LifecycleClosing})
	st.Windows = append(st.Windows[:idx], st.Windows[idx+1:]...)
	if st.ActiveModal != nil && *st.ActiveModal == id {
		st.ActiveModal = nil
	}
	NormalizeStack(st)
	effects = append(effects, EffectDispatchLifecycle{WindowID: id, Event: LifecycleClosed})
	if wasFocused {
		next, hasNext := st.FocusedWindowID()
		effects = emitFocusTransition(st, effects, id, true, next, hasNext)
	}
	effects = append(effects, EffectPersistLayout{})
	return effects, nil
}

func (r *Reducer) focusWindow(st *State, id WindowID) ([]Effect, error) {
	previous, hadFocus := st.FocusedWindowID()
	if !raiseAndFocus(st, id) {
		return nil, ErrWindowNotFound
	}
	st.StartMenuOpen = false
	var effects []Effect
	effects = emitFocusTransition(st, effects, previous, hadFocus, id, true)
	effects = append(effects, EffectFocusWindowInput{WindowID: id})
	return effects, nil
}

func (r *Reducer) minimizeWindow(st *State, id WindowID) ([]Effect, error) {
	previous, hadFocus := st.FocusedWindowID()
	win, ok := st.Window(id)
	if !ok {
		return nil, ErrWindowNotFound
	}
	win.Minimized = true
	win.Focused = false

	shouldSuspend := false
	if descriptor, found := r.catalog.Descriptor(win.AppID); found {
		shouldSuspend = descriptor.SuspendPolicy == types.SuspendOnMinimize && !win.Suspended
	}
	if shouldSuspend {
		win.Suspended = true
	}

	var effects []Effect
	recordLifecycle(st, id, LifecycleMinimized)
	effects = append(effects, EffectDispatchLifecycle{WindowID: id, Event: LifecycleMinimized})
	if shouldSuspend {
		recordLifecycle(st, id, LifecycleSuspended)
		effects = append(effects, EffectDispatchLifecycle{WindowID: id, Event: LifecycleSuspended})
	}
	NormalizeStack(st)
	if hadFocus && previous == id {
		next, hasNext := st.FocusedWindowID()
		effects = emitFocusTransition(st, effects, id, true, next, hasNext)
	}
	effects = append(effects, EffectPersistLayout{})
	return effects, nil
}

func (r *Reducer) maximizeWindow(st *State, id WindowID, viewport Rect) ([]Effect, error) {
	previous, hadFocus := st.FocusedWindowID()
	win, ok := st.Window(id)
	if !ok {
		return nil, ErrWindowNotFound
	}
	if !win.Maximized {
		restore := win.Rect
		win.RestoreRect = &restore
	}
	win.Rect = viewport.ClampedMin(MinWindowWidth, MinWindowHeight)
	win.Maximized = true
	win.Minimized = false
	wasSuspended := win.Suspended
	win.Suspended = false
	raiseAndFocus(st, id)

	var effects []Effect
	if wasSuspended {
		recordLifecycle(st, id, LifecycleResumed)
		effects = append(effects, EffectDispatchLifecycle{WindowID: id, Event: LifecycleResumed})
	}
	effects = emitFocusTransition(st, effects, previous, hadFocus, id, true)
	effects = append(effects, EffectPersistLayout{})
	return effects, nil
}

func (r *Reducer) restoreWindow(st *State, id WindowID) ([]Effect, error) {
	previous, hadFocus := st.FocusedWindowID()
	win, ok := st.Window(id)
	if !ok {
		return nil, ErrWindowNotFound
	}
	if win.Maximized {
		if win.RestoreRect != nil {
			win.Rect = *win.RestoreRect
		}
		win.Maximized = false
	}
	win.Minimized = false
	wasSuspended := win.Suspended
	win.Suspended = false
	raiseAndFocus(st, id)

	var effects []Effect
	recordLifecycle(st, id, LifecycleRestored)
	effects = append(effects, EffectDispatchLifecycle{WindowID: id, Event: LifecycleRestored})
	if wasSuspended {
		recordLifecycle(st, id, LifecycleResumed)
		effects = append(effects, EffectDispatchLifecycle{WindowID: id, Event: LifecycleResumed})
	}
	effects = emitFocusTransition(st, effects, previous, hadFocus, id, true)
	effects = append(effects, EffectPersistLayout{}, EffectFocusWindowInput{WindowID: id})
	return effects, nil
}

func (r *Reducer) toggleTaskbarWindow(st *State, in *Interaction, id WindowID) ([]Effect, error) {
	win, ok := st.Window(id)
	if !ok {
		return nil, ErrWindowNotFound
	}
	focused, hasFocus := st.FocusedWindowID()
	switch {
	case win.Minimized:
		return r.Reduce(st, in, RestoreWindow{WindowID: id})
	case hasFocus && focused == id:
		return r.Reduce(st, in, MinimizeWindow{WindowID: id})
	default:
		return r.Reduce(st, in, FocusWindow{WindowID: id})
	}
}

func beginMove(st *State, in *Interaction, act BeginMove) ([]Effect, error) {
	previous, hadFocus := st.FocusedWindowID()
	win, ok := st.Window(act.WindowID)
	if !ok {
		return nil, ErrWindowNotFound
	}
	rectStart := win.Rect
	raiseAndFocus(st, act.WindowID)
	var effects []Effect
	effects = emitFocusTransition(st, effects, previous, hadFocus, act.WindowID, true)
	in.Dragging = &DragSession{
		WindowID:     act.WindowID,
		PointerStart: act.Pointer,
		RectStart:    rectStart,
	}
	return effects, nil
}

func updateMove(st *State, in *Interaction, pointer PointerPosition) error {
	if in.Dragging == nil {
		return nil
	}
	session := in.Dragging
	win, ok := st.Window(session.WindowID)
	if !ok {
		return ErrWindowNotFound
	}
	if !win.Maximized {
		dx := pointer.X - session.PointerStart.X
		dy := pointer.Y - session.PointerStart.Y
		win.Rect = session.RectStart.Offset(dx, dy)
	}
	return nil
}

func beginResize(st *State, in *Interaction, act BeginResize) ([]Effect, error) {
	previous, hadFocus := st.FocusedWindowID()
	win, ok := st.Window(act.WindowID)
	if !ok {
		return nil, ErrWindowNotFound
	}
	rectStart := win.Rect
	raiseAndFocus(st, act.WindowID)
	var effects []Effect
	effects = emitFocusTransition(st, effects, previous, hadFocus, act.WindowID, true)
	in.Resizing = &ResizeSession{
		WindowID:     act.WindowID,
		Edge:         act.Edge,
		PointerStart: act.Pointer,
		RectStart:    rectStart,
		Viewport:     act.Viewport,
	}
	return effects, nil
}

func updateResize(st *State, in *Interaction, pointer PointerPosition) error {
	if in.Resizing == nil {
		return nil
	}
	session := in.Resizing
	win, ok := st.Window(session.WindowID)
	if !ok {
		return ErrWindowNotFound
	}
	if !win.Maximized && win.Flags.Resizable {
		dx := pointer.X - session.PointerStart.X
		dy := pointer.Y - session.PointerStart.Y
		resized := ResizeRect(session.RectStart, session.Edge, dx, dy).
			ClampedMin(MinWindowWidth, MinWindowHeight)
		win.Rect = clampRectToViewport(resized, session.Viewport)
	}
	return nil
}

func suspendWindow(st *State, id WindowID) ([]Effect, error) {
	win, ok := st.Window(id)
	if !ok {
		return nil, ErrWindowNotFound
	}
	if win.Suspended {
		return nil, nil
	}
	win.Suspended = true
	recordLifecycle(st, id, LifecycleSuspended)
	return []Effect{
		EffectDispatchLifecycle{WindowID: id, Event: LifecycleSuspended},
		EffectPersistLayout{},
	}, nil
}

func resumeWindow(st *State, id WindowID) ([]Effect, error) {
	win, ok := st.Window(id)
	if !ok {
		return nil, ErrWindowNotFound
	}
	if !win.Suspended {
		return nil, nil
	}
	win.Suspended = false
	recordLifecycle(st, id, LifecycleResumed)
	return []Effect{
		EffectDispatchLifecycle{WindowID: id, Event: LifecycleResumed},
		EffectPersistLayout{},
	}, nil
}

func (r *Reducer) handleAppCommand(st *State, in *Interaction, act HandleAppCommand) ([]Effect, error) {
	win, ok := st.Window(act.WindowID)
	if !ok {
		return nil, ErrWindowNotFound
	}
	appID := win.AppID

	required := RequiredCapability(act.Command)
	if !r.gate.Allow(st, appID, required) {
		// Denied commands never mutate state; the caller gets a visible
		// notice instead of an error.
		return []Effect{EffectNotify{
			Title: "Permission denied",
			Body:  fmt.Sprintf("%s is not allowed to use the %s capability", appID, required),
		}}, nil
	}

	switch cmd := act.Command.(type) {
	case CmdSetWindowTitle:
		if win.Title != cmd.Title {
			win.Title = cmd.Title
			return []Effect{EffectPersistLayout{}}, nil
		}
		return nil, nil
	case CmdPersistState:
		return r.Reduce(st, in, SetAppState{WindowID: act.WindowID, AppState: cmd.State})
	case CmdPersistSharedState:
		return r.Reduce(st, in, SetSharedAppState{AppID: appID, Key: cmd.Key, State: cmd.State})
	case CmdSaveConfig:
		if strings.TrimSpace(cmd.Namespace) == "" || strings.TrimSpace(cmd.Key) == "" {
			return nil, nil
		}
		return []Effect{EffectSaveConfig{Namespace: cmd.Namespace, Key: cmd.Key, Value: cmd.Value}}, nil
	case CmdOpenExternalURL:
		return []Effect{EffectOpenExternalURL{URL: cmd.URL}}, nil
	case CmdSubscribe:
		if strings.TrimSpace(cmd.Topic) == "" {
			return nil, nil
		}
		return []Effect{EffectSubscribeWindowTopic{WindowID: act.WindowID, Topic: cmd.Topic}}, nil
	case CmdUnsubscribe:
		if strings.TrimSpace(cmd.Topic) == "" {
			return nil, nil
		}
		return []Effect{EffectUnsubscribeWindowTopic{WindowID: act.WindowID, Topic: cmd.Topic}}, nil
	case CmdPublishEvent:
		if strings.TrimSpace(cmd.Topic) == "" {
			return nil, nil
		}
		return []Effect{EffectPublishTopicEvent{
			SourceWindowID: act.WindowID,
			Topic:          cmd.Topic,
			Payload:        cmd.Payload,
			CorrelationID:  cmd.CorrelationID,
			ReplyTo:        cmd.ReplyTo,
		}}, nil
	case CmdSetDesktopSkin:
		if skin, valid := ParseSkin(cmd.SkinID); valid {
			return r.Reduce(st, in, SetSkin{Skin: skin})
		}
		return nil, nil
	case CmdPreviewWallpaper:
		return r.Reduce(st, in, PreviewWallpaper{Config: cmd.Config})
	case CmdApplyWallpaperPreview:
		return r.Reduce(st, in, ApplyWallpaperPreview{})
	case CmdSetCurrentWallpaper:
		return r.Reduce(st, in, SetCurrentWallpaper{Config: cmd.Config})
	case CmdClearWallpaperPreview:
		return r.Reduce(st, in, ClearWallpaperPreview{})
	case CmdImportWallpaper:
		return []Effect{EffectImportWallpaper{Request: cmd.Request}}, nil
	case CmdRenameWallpaperAsset:
		name := cmd.DisplayName
		return []Effect{EffectUpdateWallpaperAssetMetadata{
			AssetID: cmd.AssetID,
			Patch:   wallpaper.MetadataPatch{DisplayName: &name},
		}}, nil
	case CmdSetWallpaperFeatured:
		featured := cmd.Featured
		return []Effect{EffectUpdateWallpaperAssetMetadata{
			AssetID: cmd.AssetID,
			Patch:   wallpaper.MetadataPatch{Featured: &featured},
		}}, nil
	case CmdSetWallpaperCollections:
		ids := cmd.CollectionIDs
		return []Effect{EffectUpdateWallpaperAssetMetadata{
			AssetID: cmd.AssetID,
			Patch:   wallpaper.MetadataPatch{CollectionIDs: &ids},
		}}, nil
	case CmdCreateWallpaperCollection:
		return []Effect{EffectCreateWallpaperCollection{DisplayName: cmd.DisplayName}}, nil
	case CmdRenameWallpaperCollection:
		return []Effect{EffectRenameWallpaperCollection{
			CollectionID: cmd.CollectionID,
			DisplayName:  cmd.DisplayName,
		}}, nil
	case CmdDeleteWallpaperCollection:
		return []Effect{EffectDeleteWallpaperCollection{CollectionID: cmd.CollectionID}}, nil
	case CmdDeleteWallpaperAsset:
		return []Effect{EffectDeleteWallpaperAsset{AssetID: cmd.AssetID}}, nil
	case CmdSetDesktopHighContrast:
		return r.Reduce(st, in, SetHighContrast{Enabled: cmd.Enabled})
	case CmdSetDesktopReducedMotion:
		return r.Reduce(st, in, SetReducedMotion{Enabled: cmd.Enabled})
	case CmdNotify:
		return []Effect{EffectNotify{Title: cmd.Title, Body: cmd.Body}}, nil
	default:
		return nil, fmt.Errorf("unsupported app command type %T", act.Command)
	}
}

func pushTerminalHistory(st *State, command string) []Effect {
	if !st.Preferences.TerminalHistoryEnabled || strings.TrimSpace(command) == "" {
		return nil
	}
	st.TerminalHistory = append(st.TerminalHistory, command)
	if len(st.TerminalHistory) > maxTerminalHistory {
		overflow := len(st.TerminalHistory) - maxTerminalHistory
		st.TerminalHistory = st.TerminalHistory[overflow:]
	}
	return []Effect{EffectPersistTerminalHistory{}}
}

// maxTerminalHistory caps retained terminal commands.
const maxTerminalHistory = 100

func (r *Reducer) hydrateSnapshot(st *State, snap Snapshot) []Effect {
	maxRestore := st.Preferences.MaxRestoreWindows
	theme := st.Theme
	wallpaperCfg := st.Wallpaper
	preview := st.WallpaperPreview
	library := st.Library
	overlay := st.PolicyOverlay

	*st = *FromSnapshot(snap)
	st.Theme = theme
	st.Wallpaper = wallpaperCfg
	st.WallpaperPreview = preview
	st.Library = library
	st.PolicyOverlay = overlay

	// Older snapshots serialized bare app names; windows whose id still
	// fails to resolve would be unownable, so they are dropped.
	kept := st.Windows[:0]
	for _, win := range st.Windows {
		canonical, ok := r.catalog.CanonicalAppID(win.AppID)
		if !ok {
			continue
		}
		win.AppID = canonical
		kept = append(kept, win)
	}
	st.Windows = kept

	if len(st.Windows) > maxRestore {
		st.Windows = st.Windows[:maxRestore]
	}
	NormalizeStack(st)

	var effects []Effect
	for i := range st.Windows {
		if st.Windows[i].LastLifecycle == "" {
			st.Windows[i].LastLifecycle = LifecycleMounted
		}
		effects = append(effects, EffectDispatchLifecycle{
			WindowID: st.Windows[i].ID,
			Event:    LifecycleMounted,
		})
	}
	if focused, ok := st.FocusedWindowID(); ok {
		recordLifecycle(st, focused, LifecycleFocused)
		effects = append(effects, EffectDispatchLifecycle{WindowID: focused, Event: LifecycleFocused})
	}
	return effects
}

func normalizeWallpaperState(st *State) {
	if _, ok := st.Library.Resolve(st.Wallpaper); !ok {
		st.Wallpaper = wallpaper.DefaultConfig()
	}
	if st.WallpaperPreview != nil {
		if _, ok := st.Library.Resolve(*st.WallpaperPreview); !ok {
			st.WallpaperPreview = nil
		}
	}
}

// preferredWindowForApp picks the window an activation should reuse: the
// focused non-minimized instance first, then the topmost non-minimized one,
// then any instance.
func preferredWindowForApp(st *State, appID string) (WindowID, bool) {
	for i := len(st.Windows) - 1; i >= 0; i-- {
		w := &st.Windows[i]
		if w.AppID == appID && !w.Minimized && w.Focused {
			return w.ID, true
		}
	}
	for i := len(st.Windows) - 1; i >= 0; i-- {
		w := &st.Windows[i]
		if w.AppID == appID && !w.Minimized {
			return w.ID, true
		}
	}
	for i := len(st.Windows) - 1; i >= 0; i-- {
		if st.Windows[i].AppID == appID {
			return st.Windows[i].ID, true
		}
	}
	return 0, false
}

func recordLifecycle(st *State, id WindowID, event Lifecycle) {
	if win, ok := st.Window(id); ok {
		win.LastLifecycle = event
	}
}

func emitFocusTransition(st *State, effects []Effect, previous WindowID, hadPrevious bool, next WindowID, hasNext bool) []Effect {
	if hadPrevious && hasNext && previous == next {
		return effects
	}
	if hadPrevious {
		if _, ok := st.Window(previous); ok {
			recordLifecycle(st, previous, LifecycleBlurred)
			effects = append(effects, EffectDispatchLifecycle{WindowID: previous, Event: LifecycleBlurred})
		}
	}
	if hasNext {
		if _, ok := st.Window(next); ok {
			recordLifecycle(st, next, LifecycleFocused)
			effects = append(effects, EffectDispatchLifecycle{WindowID: next, Event: LifecycleFocused})
		}
	}
	return effects
}
