package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/abhijaymovva/LinkedIN-Messenger/internal/config"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/middleware"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/oauth"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/provider"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/rest"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/router"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/service"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/session"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/store"
	"github.com/abhijaymovva/LinkedIN-Messenger/internal/token"
)

func run(ctx context.Context) error {
	slog.Info("starting messenger server")

	cfg := config.FromEnv()
	db, err := store.NewPostgresDB(store.PostgresConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DB:       cfg.DB.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer db.Close()

	if err := runMigrations(db, cfg.DB.Migrations); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pgs := store.NewPostgresStore(db)

	sessions := session.NewRedis(session.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.JWT.TTL,
	})
	defer sessions.Close()

	auth := oauth.NewAuthenticator()
	if err := registerProviders(ctx, auth, cfg); err != nil {
		return fmt.Errorf("failed to register oauth providers: %w", err)
	}

	issuer := token.NewJWTIssuer(token.JwtConfig{
		Secret: token.NewSecretString(cfg.JWT.Secret),
		Issuer: "linkedin-messenger",
		TTL:    cfg.JWT.TTL,
	})

	authSrv := service.NewAuth(
		service.WithAuthenticator(auth),
		service.WithStore(pgs),
		service.WithTokenIssuer(issuer),
		service.WithSessions(sessions),
	)
	usersSrv := service.NewUsers(pgs)
	messagesSrv := service.NewMessages(pgs)

	guard := middleware.Auth(issuer)

	rt := router.New()
	rt.Use(middleware.Log(), middleware.Recover())

	rt.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	authRt := rt.SubRouter("/auth")
	authRt.Handle("/", rest.NewAuthAPI(rest.AuthAPIConfig{
		Service:     authSrv,
		Verifier:    issuer,
		Guard:       guard,
		FrontendURL: cfg.Frontend.URL,
		LoginURL:    cfg.Frontend.LoginURL,
	}))

	apiRt := rt.SubRouter("/api")
	apiRt.Use(guard)

	usersAPI := rest.NewUsersAPI(usersSrv)
	apiRt.Handle("/users", usersAPI)
	apiRt.Handle("/users/", usersAPI)

	messagesAPI := rest.NewMessagesAPI(messagesSrv)
	apiRt.Handle("/messages", messagesAPI)
	apiRt.Handle("/messages/", messagesAPI)

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		Handler:      rt,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func runMigrations(db *sql.DB, folder string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	migrator, err := migrate.NewWithDatabaseInstance("file://"+folder, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func registerProviders(ctx context.Context, auth *oauth.Authenticator, cfg config.Config) error {
	prvLinkedIn, err := provider.NewLinkedIn(ctx, provider.LinkedInConfig{
		ClientID:     cfg.OAuth.LinkedIn.ClientID,
		ClientSecret: cfg.OAuth.LinkedIn.ClientSecret,
		RedirectURL:  cfg.OAuth.LinkedIn.RedirectURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create linkedin oauth provider: %w", err)
	}

	return auth.Use("linkedin", prvLinkedIn)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("server terminated with error", "error", err)
		os.Exit(1)
	}
}
