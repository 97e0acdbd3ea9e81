package apps

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// LoadManifestDir walks dir for *.toml app manifests and registers each in
// the registry. Invalid manifests are logged and skipped; walking errors
// abort the load.
func LoadManifestDir(registry *Registry, dir string, log *zap.Logger) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	var mu sync.Mutex
	loaded := 0

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".toml") {
			return nil
		}
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		manifest, parseErr := ParseManifest(raw)
		if parseErr != nil {
			log.Warn("skipping invalid app manifest",
				zap.String("path", path),
				zap.Error(parseErr))
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		if regErr := registry.Register(manifest.Descriptor()); regErr != nil {
			log.Warn("skipping conflicting app manifest",
				zap.String("path", path),
				zap.Error(regErr))
			return nil
		}
		loaded++
		return nil
	})
	if err != nil {
		return loaded, fmt.Errorf("walk app manifest dir %s: %w", filepath.Clean(dir), err)
	}
	return loaded, nil
}
