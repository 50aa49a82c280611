package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tagboard/internal/db"
	"github.com/tagboard/internal/handler"
	"github.com/tagboard/internal/ratelimit"
	"github.com/tagboard/internal/router"
	"github.com/tagboard/internal/service"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, app, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $LISTEN_ADDR)")
	return cmd
}

func runServe(ctx context.Context, app *App, addr string) error {
	cfg := app.Config
	if addr == "" {
		addr = cfg.ListenAddr
	}
	gin.SetMode(cfg.GinMode)

	gdb, err := db.Open(cfg.CachePath)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	client := app.client()
	directory := service.NewDirectory(client, service.NewCacheService(gdb), app.log)
	loadCtx, cancel := context.WithTimeout(ctx, cfg.BackendTimeout)
	if err := directory.Load(loadCtx); err != nil {
		app.log.WithError(err).Warn("初次加载标签失败，先使用本地缓存")
	}
	cancel()

	limiter := ratelimit.PerMinute(cfg.LoginRatePerMinute)
	defer limiter.Stop()

	api := handler.NewAPI(handler.Options{
		Client:          client,
		Directory:       directory,
		Limiter:         limiter,
		Logger:          app.log,
		DefaultLanguage: cfg.DefaultLanguage,
	})
	engine := router.SetupRouter(router.Options{
		API:           api,
		SessionSecret: cfg.SessionSecret,
		TemplateGlob:  cfg.TemplateGlob,
		Logger:        app.log,
	})

	srv := &http.Server{Addr: addr, Handler: engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		app.log.WithField("addr", addr).WithField("backend", client.BaseURL()).Info("tagboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	app.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
