package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config agrupa la configuración del servicio.
// Se carga desde un YAML opcional y luego se aplican overrides por env vars,
// así el archivo sirve para dev y las env vars mandan en deploy.
type Config struct {
	Port  string `yaml:"port"`
	DBDSN string `yaml:"db_dsn"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Assistant struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"assistant"`

	WalletAuth struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"wallet_auth"`
}

// Load lee el YAML en path (si existe) y aplica overrides de env.
// path vacío => solo env + defaults.
func Load(path string) (Config, error) {
	var cfg Config

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
			// archivo opcional: si no existe seguimos con defaults
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// FromEnv carga config sin archivo (ruta tomada de CONFIG_FILE si está).
func FromEnv() (Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

func applyEnv(cfg *Config) {
	setIfEnv(&cfg.Port, "PORT")
	setIfEnv(&cfg.DBDSN, "DB_DSN")
	setIfEnv(&cfg.Log.Level, "LOG_LEVEL")
	setIfEnv(&cfg.Log.Format, "LOG_FORMAT")
	setIfEnv(&cfg.Assistant.APIKey, "ASSISTANT_API_KEY")
	setIfEnv(&cfg.Assistant.Model, "ASSISTANT_MODEL")
	setIfEnv(&cfg.Assistant.BaseURL, "ASSISTANT_BASE_URL")
	setIfEnv(&cfg.WalletAuth.BaseURL, "WALLET_AUTH_URL")
	setIfEnv(&cfg.WalletAuth.APIKey, "WALLET_AUTH_API_KEY")
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
	if strings.TrimSpace(cfg.Log.Format) == "" {
		cfg.Log.Format = "text"
	}
	if strings.TrimSpace(cfg.Assistant.Model) == "" {
		cfg.Assistant.Model = "gemini-2.5-flash"
	}
}

func setIfEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
