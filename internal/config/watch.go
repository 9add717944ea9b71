package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/courtside-app/courtside/internal/logging"
)

// Watch logs edits to the config file viper loaded. Values already handed
// to running components are not changed; an invalid edit is reported so the
// next start does not fail by surprise.
func Watch(logger *logging.Logger) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		log := logger.With("file", e.Name, "op", e.Op.String())
		if _, err := Load(); err != nil {
			log.Warn("config file changed and is now invalid", "error", err)
			return
		}
		log.Info("config file changed; restart to apply")
	})
	viper.WatchConfig()
}
