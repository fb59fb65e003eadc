package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is loaded once per process and must not be mutated afterwards.
type Config struct {
	AppName           string `env:"APP_NAME,default=FastAPI App" json:"app_name" yaml:"app_name"`
	Environment       string `env:"ENVIRONMENT,default=dev" json:"environment" yaml:"environment"`
	Debug             bool   `env:"DEBUG,default=false" json:"debug" yaml:"debug"`
	Host              string `env:"HOST,default=127.0.0.1" json:"host" yaml:"host"`
	Port              int    `env:"PORT,default=8000" json:"port" yaml:"port"`
	APIKey            Secret `env:"API_KEY,required" json:"-" yaml:"-"`
	AllowedOriginsRaw string `env:"ALLOWED_ORIGINS" json:"allowed_origins" yaml:"allowed_origins"`

	LogFormat      string  `env:"LOG_FORMAT,default=text" json:"log_format" yaml:"log_format"`
	StoreBackend   string  `env:"STORE_BACKEND,default=memory" json:"store_backend" yaml:"store_backend"`
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=0" json:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=20" json:"rate_limit_burst" yaml:"rate_limit_burst"`
}

// EnvKeys lists every variable the loader resolves, in canonical spelling.
var EnvKeys = []string{
	"APP_NAME",
	"ENVIRONMENT",
	"DEBUG",
	"HOST",
	"PORT",
	"API_KEY",
	"ALLOWED_ORIGINS",
	"LOG_FORMAT",
	"STORE_BACKEND",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
}

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// AllowedOrigins splits ALLOWED_ORIGINS on commas, dropping blank entries.
func (c *Config) AllowedOrigins() []string {
	out := []string{}
	for _, part := range strings.Split(c.AllowedOriginsRaw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) Public() ConfigView {
	return ConfigView{AppName: c.AppName, Environment: c.Environment}
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return &ConfigError{Field: "LOG_FORMAT", Err: fmt.Errorf("must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.LogFormat)}
	}
	switch c.StoreBackend {
	case StoreMemory, StoreSQLite:
	default:
		return &ConfigError{Field: "STORE_BACKEND", Err: fmt.Errorf("must be %q or %q, got %q", StoreMemory, StoreSQLite, c.StoreBackend)}
	}
	if c.Port < 0 || c.Port > 65535 {
		return &ConfigError{Field: "PORT", Err: fmt.Errorf("out of range: %d", c.Port)}
	}
	if c.RateLimitRPS < 0 {
		return &ConfigError{Field: "RATE_LIMIT_RPS", Err: errors.New("must not be negative")}
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return &ConfigError{Field: "RATE_LIMIT_BURST", Err: errors.New("must be at least 1 when rate limiting is on")}
	}
	return nil
}

// Loader resolves Config from the process environment with a dotenv file
// beneath it. The first successful Load is cached; failures are not.
type Loader struct {
	envFile string

	mu  sync.Mutex
	cfg *Config
}

func NewLoader(envFile string) *Loader {
	return &Loader{envFile: envFile}
}

var defaultLoader = NewLoader(".env")

// Load resolves the process-wide configuration from ./.env and the environment.
func Load() (*Config, error) {
	return defaultLoader.Load()
}

func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cfg != nil {
		return l.cfg, nil
	}
	vals, err := l.resolve()
	if err != nil {
		return nil, err
	}
	if vals["API_KEY"] == "" {
		return nil, &ConfigError{Field: "API_KEY", Err: errors.New("required but not set")}
	}

	var cfg Config
	if err := decodeFrom(vals, &cfg); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l.cfg = &cfg
	return l.cfg, nil
}

// resolve picks a value for every key in EnvKeys: the process environment
// first, in any letter case, then the dotenv file. A key set to "" in the
// environment still shadows the file.
func (l *Loader) resolve() (map[string]string, error) {
	file := envSource{}
	if l.envFile != "" {
		vals, err := godotenv.Read(l.envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Field: l.envFile, Err: err}
		}
		file = vals
	}

	env := envSource{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	out := make(map[string]string, len(EnvKeys))
	for _, key := range EnvKeys {
		for _, src := range []envSource{env, file} {
			v, ok, err := src.lookup(key)
			if err != nil {
				return nil, err
			}
			if ok {
				out[key] = v
				break
			}
		}
	}
	return out, nil
}

// envSource maps variable names, as written, to values.
type envSource map[string]string

// lookup finds key in any letter case. The exact spelling wins; otherwise
// every other spelling present must agree on the value.
func (s envSource) lookup(key string) (string, bool, error) {
	if v, ok := s[key]; ok {
		return v, true, nil
	}
	var names []string
	for name := range s {
		if strings.EqualFold(name, key) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false, nil
	}
	slices.Sort(names)
	v := s[names[0]]
	for _, name := range names[1:] {
		if s[name] != v {
			return "", false, &ConfigError{Field: key, Err: fmt.Errorf("conflicting values under %s", strings.Join(names, ", "))}
		}
	}
	return v, true, nil
}

// envMu guards the window in which decodeFrom swaps values into the process
// environment.
var envMu sync.Mutex

// decodeFrom runs envdecode over vals and then puts every touched variable
// back the way it was, so loading leaves the environment unchanged.
func decodeFrom(vals map[string]string, cfg *Config) error {
	envMu.Lock()
	defer envMu.Unlock()

	for _, key := range EnvKeys {
		prev, had := os.LookupEnv(key)
		v, ok := vals[key]
		if had && ok && prev == v {
			continue
		}
		defer restoreEnv(key, prev, had)

		var err error
		if ok {
			err = os.Setenv(key, v)
		} else {
			err = os.Unsetenv(key)
		}
		if err != nil {
			return err
		}
	}
	return envdecode.StrictDecode(cfg)
}

func restoreEnv(key, prev string, had bool) {
	if had {
		_ = os.Setenv(key, prev)
	} else {
		_ = os.Unsetenv(key)
	}
}
