package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DebounceDelay is how long Watch waits for more changes before reloading.
const DebounceDelay = 300 * time.Millisecond

// Watch reloads the catalog whenever a template file in the user directory
// changes and then calls onChange. It blocks until ctx is cancelled.
func (c *Catalog) Watch(ctx context.Context, onChange func()) error {
	if c.userDir == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(c.userDir); err != nil {
		return fmt.Errorf("watch %s: %w", c.userDir, err)
	}

	ticker := time.NewTicker(DebounceDelay)
	defer ticker.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isTemplateFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = true
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("template watcher error")

		case <-ticker.C:
			if !pending {
				continue
			}
			pending = false
			if err := c.Reload(); err != nil {
				log.Error().Err(err).Msg("reload templates")
				continue
			}
			log.Info().Int("templates", c.Count()).Msg("templates reloaded")
			if onChange != nil {
				onChange()
			}
		}
	}
}
