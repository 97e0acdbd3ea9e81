package http

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/retrodesk/desktopd/internal/desktop"
	"github.com/retrodesk/desktopd/internal/domain/wallpaper"
)

// ErrUnknownAction indicates an action envelope with an unrecognized type.
var ErrUnknownAction = errors.New("unknown action type")

// ErrUnknownCommand indicates an app command with an unrecognized type.
var ErrUnknownCommand = errors.New("unknown app command type")

type actionEnvelope struct {
	Type string `json:"type"`

	AppID    string                  `json:"app_id,omitempty"`
	WindowID desktop.WindowID        `json:"window_id,omitempty"`
	Request  *openRequestPayload     `json:"request,omitempty"`
	Viewport *desktop.Rect           `json:"viewport,omitempty"`
	Pointer  desktop.PointerPosition `json:"pointer,omitempty"`
	Edge     desktop.ResizeEdge      `json:"edge,omitempty"`
	Command  json.RawMessage         `json:"command,omitempty"`
	Skin     string                  `json:"skin,omitempty"`
	Config   *wallpaper.Config       `json:"config,omitempty"`
	Enabled  bool                    `json:"enabled,omitempty"`
	Line     string                  `json:"line,omitempty"`
	Key      string                  `json:"key,omitempty"`
	State    json.RawMessage         `json:"state,omitempty"`
	DeepLink *desktop.DeepLink       `json:"deep_link,omitempty"`
}

// openRequestPayload mirrors OpenWindowRequest but defaults the window
// flags when a client omits them.
type openRequestPayload struct {
	AppID        string               `json:"app_id"`
	Title        string               `json:"title,omitempty"`
	IconID       string               `json:"icon_id,omitempty"`
	Rect         *desktop.Rect        `json:"rect,omitempty"`
	Viewport     *desktop.Rect        `json:"viewport,omitempty"`
	PersistKey   string               `json:"persist_key,omitempty"`
	LaunchParams json.RawMessage      `json:"launch_params,omitempty"`
	AppState     json.RawMessage      `json:"app_state,omitempty"`
	Flags        *desktop.WindowFlags `json:"flags,omitempty"`
}

func (p *openRequestPayload) toRequest() desktop.OpenWindowRequest {
	req := desktop.NewOpenWindowRequest(p.AppID)
	req.Title = p.Title
	req.IconID = p.IconID
	req.Rect = p.Rect
	req.Viewport = p.Viewport
	req.PersistKey = p.PersistKey
	req.LaunchParams = p.LaunchParams
	req.AppState = p.AppState
	if p.Flags != nil {
		req.Flags = *p.Flags
	}
	return req
}

// DecodeAction parses a client action envelope into a reducer action.
// Internal actions such as boot hydration are not expressible on the wire.
func DecodeAction(raw []byte) (desktop.Action, error) {
	var env actionEnvelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	switch env.Type {
	case "activate_app":
		return desktop.ActivateApp{AppID: env.AppID, Viewport: env.Viewport}, nil
	case "open_window":
		if env.Request == nil {
			return nil, errors.New("open_window requires a request")
		}
		return desktop.OpenWindow{Request: env.Request.toRequest()}, nil
	case "close_window":
		return desktop.CloseWindow{WindowID: env.WindowID}, nil
	case "focus_window":
		return desktop.FocusWindow{WindowID: env.WindowID}, nil
	case "minimize_window":
		return desktop.MinimizeWindow{WindowID: env.WindowID}, nil
	case "maximize_window":
		if env.Viewport == nil {
			return nil, errors.New("maximize_window requires a viewport")
		}
		return desktop.MaximizeWindow{WindowID: env.WindowID, Viewport: *env.Viewport}, nil
	case "restore_window":
		return desktop.RestoreWindow{WindowID: env.WindowID}, nil
	case "toggle_taskbar_window":
		return desktop.ToggleTaskbarWindow{WindowID: env.WindowID}, nil
	case "toggle_start_menu":
		return desktop.ToggleStartMenu{}, nil
	case "close_start_menu":
		return desktop.CloseStartMenu{}, nil
	case "begin_move":
		return desktop.BeginMove{WindowID: env.WindowID, Pointer: env.Pointer}, nil
	case "update_move":
		return desktop.UpdateMove{Pointer: env.Pointer}, nil
	case "end_move":
		if env.Viewport != nil {
			return desktop.EndMoveWithViewport{Viewport: *env.Viewport}, nil
		}
		return desktop.EndMove{}, nil
	case "begin_resize":
		if env.Viewport == nil {
			return nil, errors.New("begin_resize requires a viewport")
		}
		return desktop.BeginResize{
			WindowID: env.WindowID,
			Edge:     env.Edge,
			Pointer:  env.Pointer,
			Viewport: *env.Viewport,
		}, nil
	case "update_resize":
		return desktop.UpdateResize{Pointer: env.Pointer}, nil
	case "end_resize":
		return desktop.EndResize{}, nil
	case "suspend_window":
		return desktop.SuspendWindow{WindowID: env.WindowID}, nil
	case "resume_window":
		return desktop.ResumeWindow{WindowID: env.WindowID}, nil
	case "app_command":
		cmd, err := decodeAppCommand(env.Command)
		if err != nil {
			return nil, err
		}
		return desktop.HandleAppCommand{WindowID: env.WindowID, Command: cmd}, nil
	case "set_skin":
		skin, ok := desktop.ParseSkin(env.Skin)
		if !ok {
			return nil, fmt.Errorf("unknown skin %q", env.Skin)
		}
		return desktop.SetSkin{Skin: skin}, nil
	case "set_current_wallpaper":
		if env.Config == nil {
			return nil, errors.New("set_current_wallpaper requires a config")
		}
		return desktop.SetCurrentWallpaper{Config: *env.Config}, nil
	case "preview_wallpaper":
		if env.Config == nil {
			return nil, errors.New("preview_wallpaper requires a config")
		}
		return desktop.PreviewWallpaper{Config: *env.Config}, nil
	case "apply_wallpaper_preview":
		return desktop.ApplyWallpaperPreview{}, nil
	case "clear_wallpaper_preview":
		return desktop.ClearWallpaperPreview{}, nil
	case "set_high_contrast":
		return desktop.SetHighContrast{Enabled: env.Enabled}, nil
	case "set_reduced_motion":
		return desktop.SetReducedMotion{Enabled: env.Enabled}, nil
	case "set_audio_enabled":
		return desktop.SetAudioEnabled{Enabled: env.Enabled}, nil
	case "push_terminal_history":
		return desktop.PushTerminalHistory{Command: env.Line}, nil
	case "set_app_state":
		return desktop.SetAppState{WindowID: env.WindowID, AppState: env.State}, nil
	case "set_shared_app_state":
		return desktop.SetSharedAppState{AppID: env.AppID, Key: env.Key, State: env.State}, nil
	case "apply_deep_link":
		if env.DeepLink == nil {
			return nil, errors.New("apply_deep_link requires a deep_link")
		}
		return desktop.ApplyDeepLink{DeepLink: *env.DeepLink}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
}

type commandEnvelope struct {
	Type string `json:"type"`

	Title         string                   `json:"title,omitempty"`
	Body          string                   `json:"body,omitempty"`
	State         json.RawMessage          `json:"state,omitempty"`
	Key           string                   `json:"key,omitempty"`
	Namespace     string                   `json:"namespace,omitempty"`
	Value         json.RawMessage          `json:"value,omitempty"`
	URL           string                   `json:"url,omitempty"`
	Topic         string                   `json:"topic,omitempty"`
	Payload       json.RawMessage          `json:"payload,omitempty"`
	CorrelationID string                   `json:"correlation_id,omitempty"`
	ReplyTo       string                   `json:"reply_to,omitempty"`
	SkinID        string                   `json:"skin_id,omitempty"`
	Config        *wallpaper.Config        `json:"config,omitempty"`
	Request       *wallpaper.ImportRequest `json:"request,omitempty"`
	AssetID       string                   `json:"asset_id,omitempty"`
	DisplayName   string                   `json:"display_name,omitempty"`
	Featured      bool                     `json:"featured,omitempty"`
	CollectionIDs []string                 `json:"collection_ids,omitempty"`
	CollectionID  string                   `json:"collection_id,omitempty"`
	Enabled       bool                     `json:"enabled,omitempty"`
}

func decodeAppCommand(raw json.RawMessage) (desktop.AppCommand, error) {
	if len(raw) == 0 {
		return nil, errors.New("app_command requires a command")
	}
	var env commandEnvelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode app command: %w", err)
	}

	switch env.Type {
	case "set_window_title":
		return desktop.CmdSetWindowTitle{Title: env.Title}, nil
	case "persist_state":
		return desktop.CmdPersistState{State: env.State}, nil
	case "persist_shared_state":
		return desktop.CmdPersistSharedState{Key: env.Key, State: env.State}, nil
	case "save_config":
		return desktop.CmdSaveConfig{Namespace: env.Namespace, Key: env.Key, Value: env.Value}, nil
	case "open_external_url":
		return desktop.CmdOpenExternalURL{URL: env.URL}, nil
	case "subscribe":
		return desktop.CmdSubscribe{Topic: env.Topic}, nil
	case "unsubscribe":
		return desktop.CmdUnsubscribe{Topic: env.Topic}, nil
	case "publish_event":
		return desktop.CmdPublishEvent{
			Topic:         env.Topic,
			Payload:       env.Payload,
			CorrelationID: env.CorrelationID,
			ReplyTo:       env.ReplyTo,
		}, nil
	case "set_desktop_skin":
		return desktop.CmdSetDesktopSkin{SkinID: env.SkinID}, nil
	case "preview_wallpaper":
		if env.Config == nil {
			return nil, errors.New("preview_wallpaper requires a config")
		}
		return desktop.CmdPreviewWallpaper{Config: *env.Config}, nil
	case "apply_wallpaper_preview":
		return desktop.CmdApplyWallpaperPreview{}, nil
	case "set_current_wallpaper":
		if env.Config == nil {
			return nil, errors.New("set_current_wallpaper requires a config")
		}
		return desktop.CmdSetCurrentWallpaper{Config: *env.Config}, nil
	case "clear_wallpaper_preview":
		return desktop.CmdClearWallpaperPreview{}, nil
	case "import_wallpaper":
		if env.Request == nil {
			return nil, errors.New("import_wallpaper requires a request")
		}
		return desktop.CmdImportWallpaper{Request: *env.Request}, nil
	case "rename_wallpaper_asset":
		return desktop.CmdRenameWallpaperAsset{AssetID: env.AssetID, DisplayName: env.DisplayName}, nil
	case "set_wallpaper_featured":
		return desktop.CmdSetWallpaperFeatured{AssetID: env.AssetID, Featured: env.Featured}, nil
	case "set_wallpaper_collections":
		return desktop.CmdSetWallpaperCollections{AssetID: env.AssetID, CollectionIDs: env.CollectionIDs}, nil
	case "create_wallpaper_collection":
		return desktop.CmdCreateWallpaperCollection{DisplayName: env.DisplayName}, nil
	case "rename_wallpaper_collection":
		return desktop.CmdRenameWallpaperCollection{CollectionID: env.CollectionID, DisplayName: env.DisplayName}, nil
	case "delete_wallpaper_collection":
		return desktop.CmdDeleteWallpaperCollection{CollectionID: env.CollectionID}, nil
	case "delete_wallpaper_asset":
		return desktop.CmdDeleteWallpaperAsset{AssetID: env.AssetID}, nil
	case "set_desktop_high_contrast":
		return desktop.CmdSetDesktopHighContrast{Enabled: env.Enabled}, nil
	case "set_desktop_reduced_motion":
		return desktop.CmdSetDesktopReducedMotion{Enabled: env.Enabled}, nil
	case "notify":
		return desktop.CmdNotify{Title: env.Title, Body: env.Body}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Type)
	}
}
