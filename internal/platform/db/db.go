package db

import (
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
)

const (
	driverName = "mysql"

	// JWT秘密鍵は設定ファイルより環境変数を優先する
	envJWTSecret = "AECOFARM_JWT_SECRET"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Listen      string         `yaml:"listen"`
	DB          DatabaseConfig `yaml:"database"`
	Certificate Certs          `yaml:"certificate"`
	Auth        AuthConfig     `yaml:"auth"`
	CORS        CORSConfig     `yaml:"cors"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込み失敗: %w", err)
	}
	return ParseConfig(buf)
}

// ParseConfig: YAML を読んだ上でデフォルト値と環境変数の上書きを適用する
func ParseConfig(buf []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパース失敗: %w", err)
	}

	if cfg.Mode == "" {
		cfg.Mode = "dev"
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	if v := os.Getenv(envJWTSecret); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is empty (set it or %s)", envJWTSecret)
	}
	return &cfg, nil
}

// 証明書と鍵の両方が指定されていれば TLS
func (c *Config) TLSEnabled() bool {
	return c.Certificate.Cert != "" && c.Certificate.Key != ""
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

func DSN(c DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC&charset=utf8mb4",
		c.Username, c.Password, c.Host, c.Port, c.DBName)
}

func Connect(c DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, DSN(c))
	if err != nil {
		return nil, fmt.Errorf("接続準備に失敗: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("DB接続に失敗: %w", err)
	}

	// 接続プール
	db.SetMaxOpenConns(40)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
