package desktop

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// DeepLinkKind discriminates deep-link open targets.
type DeepLinkKind string

const (
	DeepLinkApp     DeepLinkKind = "app"
	DeepLinkNote    DeepLinkKind = "note"
	DeepLinkProject DeepLinkKind = "project"
)

// DeepLinkTarget is one URL-derived open instruction.
type DeepLinkTarget struct {
	Kind DeepLinkKind `json:"kind"`
	// Value is an app id for app targets, or a slug for note and project
	// targets.
	Value string `json:"value"`
}

// DeepLink is the ordered set of open targets parsed from a URL.
type DeepLink struct {
	Open []DeepLinkTarget `json:"open"`
}

// OpenRequestFromDeepLink converts a deep-link target into a window open
// request. Note and project targets carry a persist key so repeat opens
// reuse the same app state.
func OpenRequestFromDeepLink(target DeepLinkTarget) OpenWindowRequest {
	switch target.Kind {
	case DeepLinkNote:
		req := NewOpenWindowRequest("system.notepad")
		req.Title = fmt.Sprintf("Note - %s", target.Value)
		req.PersistKey = fmt.Sprintf("notes:%s", target.Value)
		req.LaunchParams = mustJSON(map[string]string{"slug": target.Value})
		return req
	case DeepLinkProject:
		req := NewOpenWindowRequest("system.explorer")
		req.Title = fmt.Sprintf("Project - %s", target.Value)
		req.PersistKey = fmt.Sprintf("projects:%s", target.Value)
		req.LaunchParams = mustJSON(map[string]string{"project_slug": target.Value})
		return req
	default:
		return NewOpenWindowRequest(target.Value)
	}
}

func mustJSON(v any) json.RawMessage {
	raw, err := sonic.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
