package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Poll     PollConfig
}

type ServerConfig struct {
	Port          string
	Env           string
	PublicBaseURL string // externally reachable base, used for provider return URLs
	StoreName     string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// GatewayConfig carries the Fire credentials and the initial values seeded
// into the settings store on first start. After seeding, the settings store
// is authoritative and editable through the admin API.
type GatewayConfig struct {
	ClientID      string
	ClientKey     string
	RefreshToken  string
	Testmode      bool
	AdminEmail    string
	AdminPassword string
}

type PollConfig struct {
	Interval    time.Duration
	CallTimeout time.Duration
}

func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("FIREOB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.public_base_url", "https://localhost:8080")
	v.SetDefault("server.store_name", "Example Store")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("database.dsn", "fireob:fireob@tcp(localhost:3306)/fireob?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiry", 15*time.Minute)
	v.SetDefault("jwt.issuer", "fireob-gateway")

	v.SetDefault("gateway.client_id", "")
	v.SetDefault("gateway.client_key", "")
	v.SetDefault("gateway.refresh_token", "")
	v.SetDefault("gateway.testmode", true)
	v.SetDefault("gateway.admin_email", "admin@example.com")
	v.SetDefault("gateway.admin_password", "change-me")

	v.SetDefault("poll.interval", time.Hour)
	v.SetDefault("poll.call_timeout", 30*time.Second)

	return &Config{
		Server: ServerConfig{
			Port:          v.GetString("server.port"),
			Env:           v.GetString("server.env"),
			PublicBaseURL: strings.TrimRight(v.GetString("server.public_base_url"), "/"),
			StoreName:     v.GetString("server.store_name"),
			ReadTimeout:   v.GetDuration("server.read_timeout"),
			WriteTimeout:  v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Expiry: v.GetDuration("jwt.expiry"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Gateway: GatewayConfig{
			ClientID:      v.GetString("gateway.client_id"),
			ClientKey:     v.GetString("gateway.client_key"),
			RefreshToken:  v.GetString("gateway.refresh_token"),
			Testmode:      v.GetBool("gateway.testmode"),
			AdminEmail:    v.GetString("gateway.admin_email"),
			AdminPassword: v.GetString("gateway.admin_password"),
		},
		Poll: PollConfig{
			Interval:    v.GetDuration("poll.interval"),
			CallTimeout: v.GetDuration("poll.call_timeout"),
		},
	}
}
