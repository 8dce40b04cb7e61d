// Category label file loading and hot reload.
//
// Deployments can override the built-in category labels with a YAML file
// (CATEGORY_LABELS_PATH). The file maps category keys to display labels:
//
//	discovery: Discovery
//	talk_listen_ratio: Talk/Listen Ratio
//
// When watching is enabled the file is re-read on every write event, so
// label fixes reach dashboards without a restart.
package rollup

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// LoadLabelFile reads a YAML label map from path and merges it into the
// table. A missing or malformed file leaves the table untouched.
func LoadLabelFile(t *LabelTable, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var labels map[string]string
	if err := yaml.Unmarshal(b, &labels); err != nil {
		return err
	}
	t.Replace(labels)
	return nil
}

// WatchLabelFile reloads the label table whenever the file at path changes.
// It blocks until ctx is cancelled and is intended to run in its own
// goroutine. Reload failures are logged and skipped; the previous table
// stays in effect.
func WatchLabelFile(ctx context.Context, t *LabelTable, path string, log zerolog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the file: editors and config reloaders
	// commonly replace the file via rename, which drops a file watch.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := LoadLabelFile(t, path); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("label reload failed")
				continue
			}
			log.Info().Str("path", path).Msg("category labels reloaded")
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("label watcher error")
		}
	}
}
