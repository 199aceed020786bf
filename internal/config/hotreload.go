package config

import (
	"time"

	"github.com/agilira/argus"
	"github.com/rs/zerolog/log"
)

// intervalSetter is the subset of *store.Store this package needs for
// hot-reload, kept as an interface so config doesn't import store.
type intervalSetter interface {
	SetCompactionInterval(time.Duration)
	SetCleanupInterval(time.Duration)
}

// HotReload watches ConfigFile for changes and applies CompactionInterval
// and CleanupInterval updates to the running store. Capacity and LogFile
// are fixed at startup — a file edit touching either is logged and
// otherwise ignored, since both require reconstructing the store to take
// effect safely.
type HotReload struct {
	watcher *argus.Watcher
}

// WatchFile starts watching path and applies interval changes to target
// as they are observed. Returns nil, nil if path is empty (hot-reload is
// optional).
func WatchFile(path string, target intervalSetter) (*HotReload, error) {
	if path == "" {
		return nil, nil
	}

	handler := func(data map[string]interface{}) {
		applyIntervalChanges(data, target)
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(path, handler, argus.Config{
		PollInterval: time.Second,
	})
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(); err != nil {
		return nil, err
	}
	return &HotReload{watcher: watcher}, nil
}

// Stop stops the underlying file watcher.
func (h *HotReload) Stop() error {
	if h == nil || h.watcher == nil {
		return nil
	}
	return h.watcher.Stop()
}

func applyIntervalChanges(data map[string]interface{}, target intervalSetter) {
	if raw, ok := data["capacity"]; ok {
		log.Warn().Interface("value", raw).Msg("capacity cannot be hot-reloaded, ignoring file override")
	}
	if raw, ok := data["log_file"]; ok {
		log.Warn().Interface("value", raw).Msg("log_file cannot be hot-reloaded, ignoring file override")
	}

	if d, ok := parseDuration(data["compaction_interval"]); ok {
		target.SetCompactionInterval(d)
		log.Info().Dur("compaction_interval", d).Msg("applied hot-reloaded config")
	}
	if d, ok := parseDuration(data["cleanup_interval"]); ok {
		target.SetCleanupInterval(d)
		log.Info().Dur("cleanup_interval", d).Msg("applied hot-reloaded config")
	}
}

// parseDuration accepts either a Go duration string ("30s") or a bare
// number of seconds (YAML/JSON numbers decode as float64).
func parseDuration(value interface{}) (time.Duration, bool) {
	switch v := value.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, false
		}
		return d, true
	case float64:
		if v <= 0 {
			return 0, false
		}
		return time.Duration(v) * time.Second, true
	case int:
		if v <= 0 {
			return 0, false
		}
		return time.Duration(v) * time.Second, true
	default:
		return 0, false
	}
}
