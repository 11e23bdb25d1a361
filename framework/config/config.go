package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

// Config is the configuration a container is built with.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`

	// Values holds free-form keys handed to services through the Config
	// injection provider.
	Values map[string]any `yaml:"values"`

	// Services overrides settings per service name; see For.
	Services map[string]ServiceOverride `yaml:"services"`
}

// ServiceOverride holds the settings one service may set for itself.
type ServiceOverride struct {
	HTTP HTTPConfig `yaml:"http"`
	Log  LogConfig  `yaml:"log"`
}

type ServiceConfig struct {
	Name string `yaml:"name"`
	Env  string `yaml:"env"` // local | production | testing
}

type HTTPConfig struct {
	// Addr the shared HTTP server listens on; empty disables the listener.
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads .env (if present) and populates a Config from environment
// variables.
//
//	cfg := config.Load()
func Load(envFiles ...string) *Config {
	loadEnv(envFiles)
	cfg := &Config{Values: make(map[string]any)}
	cfg.applyEnv()
	return cfg
}

// LoadFile reads a YAML config file, substituting ${VAR} and
// ${VAR:default} references from the environment, then lets environment
// variables override what the file sets.
//
//	cfg, err := config.LoadFile("services.yaml")
func LoadFile(path string, envFiles ...string) (*Config, error) {
	loadEnv(envFiles)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "reading config %q", path)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(Expand(string(raw))), cfg); err != nil {
		return nil, errors.Annotatef(err, "parsing config %q", path)
	}
	if cfg.Values == nil {
		cfg.Values = make(map[string]any)
	}
	cfg.applyEnv()
	return cfg, nil
}

// Value returns a free-form value. Dotted keys walk nested maps:
//
//	host, ok := cfg.Value("db.host")
func (c *Config) Value(key string) (any, bool) {
	var cur any = c.Values
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// For returns the configuration of the named service: a copy of c carrying
// the service name, with the service's overrides applied. HTTP_ADDR_<NAME>
// (name upper-cased, other characters as "_") beats the file.
//
//	services:
//	  greeter:
//	    http:
//	      addr: ":8081"
func (c *Config) For(name string) *Config {
	out := *c
	out.Service.Name = name
	if o, ok := c.Services[name]; ok {
		if o.HTTP.Addr != "" {
			out.HTTP.Addr = o.HTTP.Addr
		}
		if o.Log.Level != "" {
			out.Log.Level = o.Log.Level
		}
	}
	out.HTTP.Addr = env("HTTP_ADDR_"+envName(name), out.HTTP.Addr)
	return &out
}

func envName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, name)
}

// applyEnv overlays environment variables on whatever the file set, falling
// back to defaults.
func (c *Config) applyEnv() {
	c.Service.Name = env("SERVICE_NAME", or(c.Service.Name, "service"))
	c.Service.Env = env("SERVICE_ENV", or(c.Service.Env, "local"))
	c.HTTP.Addr = env("HTTP_ADDR", c.HTTP.Addr)
	c.Log.Level = env("LOG_LEVEL", or(c.Log.Level, "info"))
}

// ── Substitution ──────────────────────────────────────────────────────────────

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([^}]*))?\}`)

// Expand replaces ${VAR} and ${VAR:default} with environment values.
// Unset variables without a default expand to "".
func Expand(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		if v, ok := os.LookupEnv(m[1]); ok {
			return v
		}
		return m[2]
	})
}

// ── Raw env access ────────────────────────────────────────────────────────────

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

// ── helpers ─────────────────────────────────────────────────────────────────

func loadEnv(files []string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
