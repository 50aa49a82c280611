// Package cli 定义 tagboard 的命令行入口：启动 Web 外壳、运行开发用的内存后端，
// 以及几个直接调用后端的维护命令。
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/config"
)

// App 保存命令共享的参数。
type App struct {
	Config     config.AppConfig
	BackendURL string
	JSON       bool
	Username   string
	Password   string

	log *logrus.Logger
}

// NewRootCmd 构造根命令。
func NewRootCmd() *cobra.Command {
	app := &App{Config: config.Load()}

	cmd := &cobra.Command{
		Use:          "tagboard",
		Short:        "Bookmark and tag board over the tag backend",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve the web shell
  tagboard serve

  # Run an in-memory backend for local development
  tagboard dev-backend --port 8071

  # Inspect the backend
  tagboard tags list
  tagboard users list --username admin --password admin
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.log = newLogger(app.Config.LogLevel, cmd.ErrOrStderr())
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.BackendURL, "backend", "", "backend base URL (default $BACKEND_URL)")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "print JSON instead of text")
	cmd.PersistentFlags().StringVar(&app.Username, "username", os.Getenv("TAGBOARD_USERNAME"), "backend account for commands that need a session")
	cmd.PersistentFlags().StringVar(&app.Password, "password", os.Getenv("TAGBOARD_PASSWORD"), "password for --username")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newDevBackendCmd(app))
	cmd.AddCommand(newTagsCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (app *App) backendURL() string {
	if url := strings.TrimSpace(app.BackendURL); url != "" {
		return strings.TrimRight(url, "/")
	}
	return app.Config.BackendURL
}

func (app *App) client() *backend.Client {
	return backend.New(app.backendURL(), app.Config.BackendTimeout)
}

// session 在提供了账号时先登录，返回携带后端 Cookie 的 ctx。
func (app *App) session(ctx context.Context, client *backend.Client) (context.Context, error) {
	ctx = backend.WithCredentials(ctx, backend.NewCredentials(""))
	if app.Username == "" {
		return ctx, nil
	}
	if _, err := client.Login(ctx, app.Username, app.Password); err != nil {
		return nil, fmt.Errorf("login as %s: %w", app.Username, err)
	}
	return ctx, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
