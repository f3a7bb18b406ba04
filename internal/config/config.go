package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Session     SessionConfig     `yaml:"session"`
	Translation TranslationConfig `yaml:"translation"`
	Export      ExportConfig      `yaml:"export"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test

	// Allowed CORS origins; empty allows any origin
	AllowOrigins []string `yaml:"allow_origins"`

	// Per-IP limit on the AI translation endpoint
	TranslateRPS   float64 `yaml:"translate_rps"`
	TranslateBurst int     `yaml:"translate_burst"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level    string `yaml:"level"`     // debug, info, warn, error
	SQLLevel string `yaml:"sql_level"` // silent, error, warn, info
}

type SessionConfig struct {
	Secret     string `yaml:"secret"`
	ExpireHour int    `yaml:"expire_hour"`

	// Anonymous reviewers are attributed to the first user or a generated guest
	GuestFallback bool `yaml:"guest_fallback"`
}

type TranslationConfig struct {
	Provider       string  `yaml:"provider"` // gemini, openai, azure, anthropic, ollama
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TargetLanguage string  `yaml:"target_language"`
}

type ExportConfig struct {
	OutputDir    string   `yaml:"output_dir"`
	SystemPrompt string   `yaml:"system_prompt"`
	S3           S3Config `yaml:"s3"`
}

// S3Config is optional; exports stay local when Bucket is empty.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

const DefaultSystemPrompt = "You are a professional translator translating novels from English to Burmese."

// Load reads configPath (config.yaml when empty), falling back to defaults when
// the file does not exist, then applies .env and process environment overrides.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg.overrideFromEnv()
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           "8080",
			Mode:           "debug",
			TranslateRPS:   0.5,
			TranslateBurst: 3,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "local.db",
		},
		Log: LogConfig{
			Level:    "info",
			SQLLevel: "warn",
		},
		Session: SessionConfig{
			Secret:        "atw-secret-key-change-in-production",
			ExpireHour:    24 * 30,
			GuestFallback: true,
		},
		Translation: TranslationConfig{
			Provider:       "gemini",
			Model:          "gemini-1.5-flash",
			MaxTokens:      8192,
			Temperature:    0.3,
			TargetLanguage: "Burmese",
		},
		Export: ExportConfig{
			OutputDir:    "exports",
			SystemPrompt: DefaultSystemPrompt,
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Database.DSN = dsn
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		c.Session.Secret = secret
	}
	if v := os.Getenv("GUEST_FALLBACK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Session.GuestFallback = b
		}
	}
	if provider := os.Getenv("TRANSLATION_PROVIDER"); provider != "" {
		c.Translation.Provider = provider
	}
	if baseURL := os.Getenv("TRANSLATION_BASE_URL"); baseURL != "" {
		c.Translation.BaseURL = baseURL
	}
	if model := os.Getenv("TRANSLATION_MODEL"); model != "" {
		c.Translation.Model = model
	}
	if lang := os.Getenv("TRANSLATION_TARGET_LANGUAGE"); lang != "" {
		c.Translation.TargetLanguage = lang
	}
	// Provider-specific key variables, most specific last
	for _, key := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "TRANSLATION_API_KEY"} {
		if apiKey := os.Getenv(key); apiKey != "" && c.keyMatchesProvider(key) {
			c.Translation.APIKey = apiKey
		}
	}
	if dir := os.Getenv("EXPORT_DIR"); dir != "" {
		c.Export.OutputDir = dir
	}
	if bucket := os.Getenv("EXPORT_S3_BUCKET"); bucket != "" {
		c.Export.S3.Bucket = bucket
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		c.Export.S3.Endpoint = endpoint
	}
	if accessKey := os.Getenv("S3_ACCESS_KEY"); accessKey != "" {
		c.Export.S3.AccessKey = accessKey
	}
	if secretKey := os.Getenv("S3_SECRET_KEY"); secretKey != "" {
		c.Export.S3.SecretKey = secretKey
	}
}

func (c *Config) keyMatchesProvider(envKey string) bool {
	switch envKey {
	case "OPENAI_API_KEY":
		return c.Translation.Provider == "openai" || c.Translation.Provider == "azure"
	case "ANTHROPIC_API_KEY":
		return c.Translation.Provider == "anthropic"
	case "GEMINI_API_KEY":
		return c.Translation.Provider == "gemini"
	default:
		return true
	}
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
