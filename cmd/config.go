package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/spf13/viper"
)

// Configuration keys. Each can also be set through GOGIT_<KEY> with dots
// replaced by underscores, e.g. GOGIT_AUTHOR_NAME.
const (
	authorNameKey      = "author.name"
	authorEmailKey     = "author.email"
	remoteTimeoutKey   = "remote.timeout"
	remoteUserAgentKey = "remote.user_agent"
	verboseKey         = "verbose"
)

const (
	defaultAuthorName    = "GoGit User"
	defaultAuthorEmail   = "gogit@localhost"
	defaultRemoteTimeout = 5 * time.Minute
)

func setConfigDefaults() {
	viper.SetDefault(authorNameKey, defaultAuthorName)
	viper.SetDefault(authorEmailKey, defaultAuthorEmail)
	viper.SetDefault(remoteTimeoutKey, defaultRemoteTimeout)
	viper.SetDefault(remoteUserAgentKey, constants.DefaultUserAgent)
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GOGIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("Failed to read config file", "error", err)
		}
	}
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gogit")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "gogit")
	}
	return constants.Gogit
}

// configuredAuthor returns the commit identity stamped with the current time.
func configuredAuthor() objects.Author {
	return objects.Author{
		Name:      viper.GetString(authorNameKey),
		Email:     viper.GetString(authorEmailKey),
		Timestamp: time.Now(),
	}
}

func remoteTimeout() time.Duration {
	return viper.GetDuration(remoteTimeoutKey)
}

func remoteUserAgent() string {
	return viper.GetString(remoteUserAgentKey)
}
