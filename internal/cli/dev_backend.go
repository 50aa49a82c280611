package cli

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/backend/fakebackend"
)

func newDevBackendCmd(app *App) *cobra.Command {
	var (
		addr string
		seed bool
	)
	cmd := &cobra.Command{
		Use:   "dev-backend",
		Short: "Run an in-memory backend implementing the REST contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := fakebackend.New()
			if seed {
				seedDevBackend(server)
			}
			app.log.WithField("addr", addr).WithField("prefix", fakebackend.PathPrefix).Info("dev backend listening (admin/admin)")
			srv := &http.Server{Addr: addr, Handler: server, ReadHeaderTimeout: 10 * time.Second}
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8071", "listen address")
	cmd.Flags().BoolVar(&seed, "seed", true, "seed the default tags and a sample entry")
	return cmd
}

// seedDevBackend 写入与全新后端相同的示例数据。
func seedDevBackend(server *fakebackend.Server) {
	server.SeedTag(backend.Tag{Name: "中文", Order: 0})
	server.SeedTag(backend.Tag{Name: "搜索", Order: 1})
	server.SeedSite(backend.Website{
		URL:         "http://www.baidu.com",
		Tags:        []string{"中文", "搜索"},
		Title:       "百度",
		Description: "谨防百度广告网页",
	})
}
