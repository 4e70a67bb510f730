package common

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eventflow-io/eventflow/internal/common/config"
)

// BindCommandlineArguments binds parsed pflags onto viper so config values
// can be overridden on the command line.
func BindCommandlineArguments() {
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		log.Error(err)
		os.Exit(-1)
	}
}

// LoadConfig unmarshals into cfg the first "config" file viper finds in
// defaultPath or the caller-supplied extraPaths, with EVENTFLOW_* environment
// variables overriding keys that the file or a bound flag defines. A key set
// only in the environment is not read.
func LoadConfig(cfg interface{}, defaultPath string, extraPaths []string) {
	viper.SetConfigName("config")
	viper.AddConfigPath(defaultPath)
	for _, p := range extraPaths {
		viper.AddConfigPath(p)
	}
	viper.SetEnvPrefix("EVENTFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Error(err)
			os.Exit(-1)
		}
		log.Warnf("no config file found, falling back to defaults and environment: %v", err)
	}
	if err := viper.Unmarshal(cfg); err != nil {
		log.Error(err)
		os.Exit(-1)
	}
	if err := config.Validate(cfg); err != nil {
		config.LogValidationErrors(err)
	}
}

// ConfigureLogging sets the global logrus formatter. format is either
// "text" (colorized, for local development) or "json" (for production).
func ConfigureLogging(format string, level string) {
	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})
	} else {
		log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
