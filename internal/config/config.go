package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Generator GeneratorConfig `mapstructure:"generator"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig describes the optional question bank. When Enabled is
// false the server runs without one.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// QuizConfig holds defaults applied when a request does not say otherwise.
// Directory is the only place the server reads local quiz files from; leave
// it empty to accept URLs only.
type QuizConfig struct {
	Directory         string `mapstructure:"directory"`
	ExcludeReferences bool   `mapstructure:"exclude_references"`
	ShuffleQuestions  bool   `mapstructure:"shuffle_questions"`
	ShuffleChoices    bool   `mapstructure:"shuffle_choices"`
}

type GeneratorConfig struct {
	Mode              string `mapstructure:"mode"` // api, cli or mock
	Model             string `mapstructure:"model"`
	APIKey            string `mapstructure:"api_key"`
	CLIPath           string `mapstructure:"cli_path"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "quizdeck")
	v.SetDefault("database.password", "quizdeck")
	v.SetDefault("database.dbname", "quizdeck")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)
	v.SetDefault("logging.compress", true)

	v.SetDefault("quiz.directory", "quizzes")
	v.SetDefault("quiz.exclude_references", false)
	v.SetDefault("quiz.shuffle_questions", false)
	v.SetDefault("quiz.shuffle_choices", true)

	v.SetDefault("generator.mode", "mock")
	v.SetDefault("generator.model", "claude-sonnet-4-5")
	v.SetDefault("generator.cli_path", "claude")
	v.SetDefault("generator.requests_per_minute", 6)
}

// Load reads config/config.yaml under projectRoot if present, then layers
// QUIZDECK_* environment variables on top of the defaults.
func Load(projectRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("QUIZDECK") // e.g. QUIZDECK_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing file is fine; defaults and env vars still apply.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if cfg.Quiz.Directory != "" && !filepath.IsAbs(cfg.Quiz.Directory) {
		cfg.Quiz.Directory = filepath.Join(projectRoot, cfg.Quiz.Directory)
	}
	return &cfg, nil
}
