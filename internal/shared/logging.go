package shared

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger from config. DEBUG=true lowers the level
// to debug; LOG_FORMAT=json switches to one JSON object per line.
func NewLogger(cfg *Config, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}
	if cfg.LogFormat == LogFormatJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// ConfigFields is the loggable view of Config. The API key is reduced to a
// presence flag.
func ConfigFields(cfg *Config) logrus.Fields {
	return logrus.Fields{
		"app_name":        cfg.AppName,
		"environment":     cfg.Environment,
		"debug":           cfg.Debug,
		"addr":            cfg.Addr(),
		"allowed_origins": cfg.AllowedOrigins(),
		"store":           cfg.StoreBackend,
		"api_key_set":     !cfg.APIKey.IsZero(),
	}
}
