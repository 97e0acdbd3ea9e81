package desktop

import (
	"encoding/json"

	"github.com/retrodesk/desktopd/internal/domain/wallpaper"
)

// Effect is the closed set of side-effect intents emitted by the reducer.
// Effects are executed asynchronously by the runtime; the reducer itself
// never touches the host.
type Effect interface {
	isEffect()
	// Name is a stable identifier used for logging, metrics, and failure
	// reports.
	Name() string
}

// EffectPersistLayout asks the host to persist the layout snapshot.
type EffectPersistLayout struct{}

// EffectPersistTheme asks the host to persist the theme.
type EffectPersistTheme struct{}

// EffectPersistWallpaper asks the host to persist the wallpaper config.
type EffectPersistWallpaper struct{}

// EffectPersistTerminalHistory asks the host to persist terminal history.
type EffectPersistTerminalHistory struct{}

// EffectFocusWindowInput moves input focus into a window's primary control.
type EffectFocusWindowInput struct {
	WindowID WindowID
}

// EffectParseAndOpenDeepLink expands deep-link targets into window opens.
type EffectParseAndOpenDeepLink struct {
	DeepLink DeepLink
}

// EffectOpenExternalURL opens a URL outside the shell.
type EffectOpenExternalURL struct {
	URL string
}

// EffectPlaySound plays a named UI sound.
type EffectPlaySound struct {
	Sound string
}

// EffectDispatchLifecycle delivers a lifecycle signal to a managed window.
type EffectDispatchLifecycle struct {
	WindowID WindowID
	Event    Lifecycle
}

// EffectDeliverAppEvent delivers an event directly to a window inbox.
type EffectDeliverAppEvent struct {
	WindowID      WindowID
	Topic         string
	Payload       json.RawMessage
	SourceWindow  *WindowID
	CorrelationID string
	ReplyTo       string
}

// EffectSubscribeWindowTopic subscribes a window to a bus topic.
type EffectSubscribeWindowTopic struct {
	WindowID WindowID
	Topic    string
}

// EffectUnsubscribeWindowTopic removes a window's topic subscription.
type EffectUnsubscribeWindowTopic struct {
	WindowID WindowID
	Topic    string
}

// EffectPublishTopicEvent publishes a bus event from a source window.
type EffectPublishTopicEvent struct {
	SourceWindowID WindowID
	Topic          string
	Payload        json.RawMessage
	CorrelationID  string
	ReplyTo        string
}

// EffectSaveConfig persists a namespaced config value through host prefs.
type EffectSaveConfig struct {
	Namespace string
	Key       string
	Value     json.RawMessage
}

// EffectLoadWallpaperLibrary reloads the wallpaper library from the host.
type EffectLoadWallpaperLibrary struct{}

// EffectImportWallpaper imports a wallpaper asset through the host.
type EffectImportWallpaper struct {
	Request wallpaper.ImportRequest
}

// EffectUpdateWallpaperAssetMetadata patches managed asset metadata.
type EffectUpdateWallpaperAssetMetadata struct {
	AssetID string
	Patch   wallpaper.MetadataPatch
}

// EffectCreateWallpaperCollection creates a wallpaper collection.
type EffectCreateWallpaperCollection struct {
	DisplayName string
}

// EffectRenameWallpaperCollection renames a wallpaper collection.
type EffectRenameWallpaperCollection struct {
	CollectionID string
	DisplayName  string
}

// EffectDeleteWallpaperCollection deletes a wallpaper collection.
type EffectDeleteWallpaperCollection struct {
	CollectionID string
}

// EffectDeleteWallpaperAsset deletes an imported wallpaper asset.
type EffectDeleteWallpaperAsset struct {
	AssetID string
}

// EffectNotify raises a host notification.
type EffectNotify struct {
	Title string
	Body  string
}

func (EffectPersistLayout) isEffect()                {}
func (EffectPersistTheme) isEffect()                 {}
func (EffectPersistWallpaper) isEffect()             {}
func (EffectPersistTerminalHistory) isEffect()       {}
func (EffectFocusWindowInput) isEffect()             {}
func (EffectParseAndOpenDeepLink) isEffect()         {}
func (EffectOpenExternalURL) isEffect()              {}
func (EffectPlaySound) isEffect()                    {}
func (EffectDispatchLifecycle) isEffect()            {}
func (EffectDeliverAppEvent) isEffect()              {}
func (EffectSubscribeWindowTopic) isEffect()         {}
func (EffectUnsubscribeWindowTopic) isEffect()       {}
func (EffectPublishTopicEvent) isEffect()            {}
func (EffectSaveConfig) isEffect()                   {}
func (EffectLoadWallpaperLibrary) isEffect()         {}
func (EffectImportWallpaper) isEffect()              {}
func (EffectUpdateWallpaperAssetMetadata) isEffect() {}
func (EffectCreateWallpaperCollection) isEffect()    {}
func (EffectRenameWallpaperCollection) isEffect()    {}
func (EffectDeleteWallpaperCollection) isEffect()    {}
func (EffectDeleteWallpaperAsset) isEffect()         {}
func (EffectNotify) isEffect()                       {}

func (EffectPersistLayout) Name() string                { return "persist_layout" }
func (EffectPersistTheme) Name() string                 { return "persist_theme" }
func (EffectPersistWallpaper) Name() string             { return "persist_wallpaper" }
func (EffectPersistTerminalHistory) Name() string       { return "persist_terminal_history" }
func (EffectFocusWindowInput) Name() string             { return "focus_window_input" }
func (EffectParseAndOpenDeepLink) Name() string         { return "parse_and_open_deep_link" }
func (EffectOpenExternalURL) Name() string              { return "open_external_url" }
func (EffectPlaySound) Name() string                    { return "play_sound" }
func (EffectDispatchLifecycle) Name() string            { return "dispatch_lifecycle" }
func (EffectDeliverAppEvent) Name() string              { return "deliver_app_event" }
func (EffectSubscribeWindowTopic) Name() string         { return "subscribe_window_topic" }
func (EffectUnsubscribeWindowTopic) Name() string       { return "unsubscribe_window_topic" }
func (EffectPublishTopicEvent) Name() string            { return "publish_topic_event" }
func (EffectSaveConfig) Name() string                   { return "save_config" }
func (EffectLoadWallpaperLibrary) Name() string         { return "load_wallpaper_library" }
func (EffectImportWallpaper) Name() string              { return "import_wallpaper" }
func (EffectUpdateWallpaperAssetMetadata) Name() string { return "update_wallpaper_asset_metadata" }
func (EffectCreateWallpaperCollection) Name() string    { return "create_wallpaper_collection" }
func (EffectRenameWallpaperCollection) Name() string    { return "rename_wallpaper_collection" }
func (EffectDeleteWallpaperCollection) Name() string    { return "delete_wallpaper_collection" }
func (EffectDeleteWallpaperAsset) Name() string         { return "delete_wallpaper_asset" }
func (EffectNotify) Name() string                       { return "notify" }
