package wallpaper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ImportRequest carries a user-supplied wallpaper asset to be added to the
// library. Data is the raw media payload; the manager persists it and records
// the asset metadata.
type ImportRequest struct {
	DisplayName string
	FileName    string
	Data        []byte
}

// MetadataPatch updates mutable fields of an existing asset. Nil fields are
// left untouched.
type MetadataPatch struct {
	DisplayName   *string   `json:"display_name,omitempty"`
	Note          *string   `json:"note,omitempty"`
	Featured      *bool     `json:"featured,omitempty"`
	CollectionIDs *[]string `json:"collection_ids,omitempty"`
}

// Apply returns the asset with the patch folded in.
func (p MetadataPatch) Apply(asset Asset) Asset {
	if p.DisplayName != nil {
		asset.DisplayName = *p.DisplayName
	}
	if p.Note != nil {
		asset.Note = *p.Note
	}
	if p.Featured != nil {
		asset.Featured = *p.Featured
	}
	return asset
}

// SniffMediaKind classifies imported media by content, not extension.
func SniffMediaKind(data []byte) (MediaKind, error) {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("image/gif"):
		return MediaAnimatedImage, nil
	case mt.Is("image/webp"):
		if webpIsAnimated(data) {
			return MediaAnimatedImage, nil
		}
		return MediaStaticImage, nil
	case mt.Is("image/apng"):
		return MediaAnimatedImage, nil
	case strings.HasPrefix(mt.String(), "image/"):
		return MediaStaticImage, nil
	case mt.Is("video/webm"), mt.Is("video/mp4"):
		return MediaVideo, nil
	default:
		return "", fmt.Errorf("unsupported wallpaper media type %q", mt.String())
	}
}

// webpIsAnimated checks for the ANIM chunk of an extended-format WebP.
func webpIsAnimated(data []byte) bool {
	if len(data) < 12 || !bytes.Equal(data[8:12], []byte("WEBP")) {
		return false
	}
	return bytes.Contains(data[12:], []byte("ANIM"))
}

// ValidateImport checks an import request before any side effects happen.
func ValidateImport(req ImportRequest) (MediaKind, error) {
	if strings.TrimSpace(req.DisplayName) == "" {
		return "", fmt.Errorf("wallpaper import requires a display name")
	}
	if len(req.Data) == 0 {
		return "", fmt.Errorf("wallpaper import %q: empty payload", req.DisplayName)
	}
	kind, err := SniffMediaKind(req.Data)
	if err != nil {
		return "", fmt.Errorf("wallpaper import %q: %w", req.DisplayName, err)
	}
	return kind, nil
}
