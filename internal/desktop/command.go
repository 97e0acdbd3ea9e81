package desktop

import (
	"encoding/json"

	"github.com/retrodesk/desktopd/internal/domain/wallpaper"
	"github.com/retrodesk/desktopd/internal/shared/types"
)

// AppCommand is the closed set of commands an app instance may send to the
// shell. Each command maps to a required capability that the source app must
// hold; privileged apps bypass the check.
type AppCommand interface {
	isAppCommand()
}

// CmdSetWindowTitle updates the source window's chrome title.
type CmdSetWindowTitle struct {
	Title string
}

// CmdPersistState replaces the window's app state payload.
type CmdPersistState struct {
	State json.RawMessage
}

// CmdPersistSharedState replaces shared app state under the given key.
type CmdPersistSharedState struct {
	Key   string
	State json.RawMessage
}

// CmdSaveConfig persists a namespaced config value.
type CmdSaveConfig struct {
	Namespace string
	Key       string
	Value     json.RawMessage
}

// CmdOpenExternalURL opens a URL outside the shell.
type CmdOpenExternalURL struct {
	URL string
}

// CmdSubscribe subscribes the window to a bus topic.
type CmdSubscribe struct {
	Topic string
}

// CmdUnsubscribe removes the window's topic subscription.
type CmdUnsubscribe struct {
	Topic string
}

// CmdPublishEvent publishes a bus event from the window.
type CmdPublishEvent struct {
	Topic         string
	Payload       json.RawMessage
	CorrelationID string
	ReplyTo       string
}

// CmdSetDesktopSkin switches the desktop skin preset.
type CmdSetDesktopSkin struct {
	SkinID string
}

// CmdPreviewWallpaper starts a wallpaper preview.
type CmdPreviewWallpaper struct {
	Config wallpaper.Config
}

// CmdApplyWallpaperPreview commits the active wallpaper preview.
type CmdApplyWallpaperPreview struct{}

// CmdSetCurrentWallpaper commits a wallpaper configuration.
type CmdSetCurrentWallpaper struct {
	Config wallpaper.Config
}

// CmdClearWallpaperPreview discards the active wallpaper preview.
type CmdClearWallpaperPreview struct{}

// CmdImportWallpaper imports a wallpaper asset.
type CmdImportWallpaper struct {
	Request wallpaper.ImportRequest
}

// CmdRenameWallpaperAsset renames a managed wallpaper asset.
type CmdRenameWallpaperAsset struct {
	AssetID     string
	DisplayName string
}

// CmdSetWallpaperFeatured marks a managed asset as featured.
type CmdSetWallpaperFeatured struct {
	AssetID  string
	Featured bool
}

// CmdSetWallpaperCollections sets collection membership of a managed asset.
type CmdSetWallpaperCollections struct {
	AssetID       string
	CollectionIDs []string
}

// CmdCreateWallpaperCollection creates a wallpaper collection.
type CmdCreateWallpaperCollection struct {
	DisplayName string
}

// CmdRenameWallpaperCollection renames a wallpaper collection.
type CmdRenameWallpaperCollection struct {
	CollectionID string
	DisplayName  string
}

// CmdDeleteWallpaperCollection deletes a wallpaper collection.
type CmdDeleteWallpaperCollection struct {
	CollectionID string
}

// CmdDeleteWallpaperAsset deletes an imported wallpaper asset.
type CmdDeleteWallpaperAsset struct {
	AssetID string
}

// CmdSetDesktopHighContrast toggles high-contrast rendering.
type CmdSetDesktopHighContrast struct {
	Enabled bool
}

// CmdSetDesktopReducedMotion toggles reduced-motion rendering.
type CmdSetDesktopReducedMotion struct {
	Enabled bool
}

// CmdNotify raises a host notification.
type CmdNotify struct {
	Title string
	Body  string
}

func (CmdSetWindowTitle) isAppCommand()            {}
func (CmdPersistState) isAppCommand()              {}
func (CmdPersistSharedState) isAppCommand()        {}
func (CmdSaveConfig) isAppCommand()                {}
func (CmdOpenExternalURL) isAppCommand()           {}
func (CmdSubscribe) isAppCommand()                 {}
func (CmdUnsubscribe) isAppCommand()               {}
func (CmdPublishEvent) isAppCommand()              {}
func (CmdSetDesktopSkin) isAppCommand()            {}
func (CmdPreviewWallpaper) isAppCommand()          {}
func (CmdApplyWallpaperPreview) isAppCommand()     {}
func (CmdSetCurrentWallpaper) isAppCommand()       {}
func (CmdClearWallpaperPreview) isAppCommand()     {}
func (CmdImportWallpaper) isAppCommand()           {}
func (CmdRenameWallpaperAsset) isAppCommand()      {}
func (CmdSetWallpaperFeatured) isAppCommand()      {}
func (CmdSetWallpaperCollections) isAppCommand()   {}
func (CmdCreateWallpaperCollection) isAppCommand() {}
func (CmdRenameWallpaperCollection) isAppCommand() {}
func (CmdDeleteWallpaperCollection) isAppCommand() {}
func (CmdDeleteWallpaperAsset) isAppCommand()      {}
func (CmdSetDesktopHighContrast) isAppCommand()    {}
func (CmdSetDesktopReducedMotion) isAppCommand()   {}
func (CmdNotify) isAppCommand()                    {}

// RequiredCapability maps a command to the capability the source app must
// hold for it to take effect.
func RequiredCapability(cmd AppCommand) types.Capability {
	switch cmd.(type) {
	case CmdSetWindowTitle:
		return types.CapWindow
	case CmdPersistState, CmdPersistSharedState:
		return types.CapState
	case CmdSaveConfig:
		return types.CapConfig
	case CmdOpenExternalURL:
		return types.CapExternalURL
	case CmdSubscribe, CmdUnsubscribe, CmdPublishEvent:
		return types.CapIPC
	case CmdSetDesktopSkin, CmdSetDesktopHighContrast, CmdSetDesktopReducedMotion:
		return types.CapTheme
	case CmdNotify:
		return types.CapNotifications
	default:
		// All remaining commands manage wallpaper assets or previews.
		return types.CapWallpaper
	}
}
