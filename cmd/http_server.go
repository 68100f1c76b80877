package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drivelink/backoffice/internal/admin"
	"github.com/drivelink/backoffice/internal/auth"
	authPostgres "github.com/drivelink/backoffice/internal/auth/postgres"
	"github.com/drivelink/backoffice/internal/kyc"
	"github.com/drivelink/backoffice/internal/role"
	"github.com/drivelink/backoffice/internal/transport"
	"github.com/drivelink/backoffice/internal/transport/rest"
	"github.com/drivelink/backoffice/internal/transport/swagger"
	"github.com/drivelink/backoffice/pkg/logger"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle back office API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	cfg := mustLoadConfig()
	lg := logger.LoggerWrapper()
	ctx := context.Background()

	a, err := newApp(ctx, cfg, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	doc, err := swagger.LoadSpec(ctx, cfg.Server.OpenAPIFile)
	if err != nil {
		lg.Warn("openapi document not served", "error", err)
	}

	base := transport.NewBaseHandler(lg)
	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(a.gormDB), tokens, lg)

	router := rest.NewRouter(rest.Handlers{
		Health: rest.NewHealthHandler(base, map[string]rest.CheckFunc{
			"postgres": rest.PostgresCheck(a.sqlxDB),
			"redis":    rest.RedisCheck(a.redis),
		}),
		Auth:    auth.NewHandler(base, authService, a.admins),
		RBAC:    auth.NewRBACAuthorization(a.resolver, lg),
		Admin:   admin.NewHandler(base, admin.NewService(a.resolver, lg)),
		Role:    role.NewHandler(base, a.roles),
		Kyc:     kyc.NewHandler(base, a.kyc),
		OpenAPI: doc,
	}, rest.Options{
		AllowedOrigins: cfg.Server.Origins(),
		LoginRateLimit: cfg.Server.LoginRateLimit,
		Production:     cfg.Environment == "production",
	}, lg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		lg.Info("starting HTTP server", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("server shutdown error", "error", err)
		}
		if err := a.bus.Drain(shutdownCtx); err != nil {
			lg.Warn("pending event handlers abandoned", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server failed to start", "error", err)
			a.Close()
			os.Exit(1)
		}
	}

	lg.Info("server stopped")
}
