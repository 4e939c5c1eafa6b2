package config

import (
	"time"

	"github.com/abhijaymovva/LinkedIN-Messenger/internal/env"
)

// Config is the whole process configuration, built once at startup and passed
// into components by value. Nothing reads the environment after FromEnv.
type Config struct {
	HTTP     httpConfig
	DB       dbConfig
	Redis    redisConfig
	JWT      jwtConfig
	OAuth    oauthConfig
	Frontend frontendConfig
}

type httpConfig struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type dbConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	Migrations string
}

type redisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type jwtConfig struct {
	Secret string
	TTL    time.Duration
}

type oauthConfig struct {
	LinkedIn linkedInConfig
}

type linkedInConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type frontendConfig struct {
	// URL is where the browser lands after a successful login, with the
	// session token appended as ?token=...
	URL string
	// LoginURL is where failed handshakes are sent with ?error=...
	LoginURL string
}

func FromEnv() Config {
	return Config{
		HTTP: httpConfig{
			ListenAddr:      env.String("HTTP_LISTEN_ADDR", ":8080"),
			ReadTimeout:     env.Duration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.Duration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     env.Duration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: env.Duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		DB: dbConfig{
			Host:       env.String("DB_HOST", "localhost"),
			Port:       env.String("DB_PORT", "5432"),
			User:       env.RequireString("DB_USER"),
			Password:   env.RequireString("DB_PASSWORD"),
			Name:       env.String("DB_NAME", "messenger"),
			Migrations: env.String("DB_MIGRATIONS", "db/migrations"),
		},
		Redis: redisConfig{
			Host:     env.String("REDIS_HOST", "localhost"),
			Port:     env.String("REDIS_PORT", "6379"),
			Password: env.String("REDIS_PASSWORD", ""),
			DB:       env.Int("REDIS_DB", 0),
		},
		JWT: jwtConfig{
			Secret: env.RequireString("JWT_SECRET"),
			TTL:    env.Duration("JWT_TTL", 24*time.Hour),
		},
		OAuth: oauthConfig{
			LinkedIn: linkedInConfig{
				ClientID:     env.RequireString("LINKEDIN_CLIENT_ID"),
				ClientSecret: env.RequireString("LINKEDIN_CLIENT_SECRET"),
				RedirectURL:  env.RequireString("LINKEDIN_CALLBACK_URL"),
			},
		},
		Frontend: frontendConfig{
			URL:      env.String("FRONTEND_URL", "http://localhost:3000"),
			LoginURL: env.String("LOGIN_URL", "http://localhost:3000/login"),
		},
	}
}
