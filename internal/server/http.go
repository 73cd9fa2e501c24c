package server

import (
	"time"

	"egame-ws/internal/conf"
	"egame-ws/internal/service"

	"github.com/google/wire"
	"github.com/yola1107/kratos/v2/log"
	"github.com/yola1107/kratos/v2/middleware/recovery"
	"github.com/yola1107/kratos/v2/transport/http"
)

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(NewHTTPServer, NewConfigWatcher)

// NewHTTPServer new an HTTP server hosting the websocket endpoint and the
// admin config hook.
func NewHTTPServer(c *conf.Server, svc *service.GameService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Http.Network != "" {
		opts = append(opts, http.Network(c.Http.Network))
	}
	if c.Http.Addr != "" {
		opts = append(opts, http.Address(c.Http.Addr))
	}
	if c.Http.Timeout != "" {
		if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}
	srv := http.NewServer(opts...)
	srv.HandleFunc("/ws", svc.ServeWS)
	srv.HandleFunc("/admin/config/invalidate", svc.ServeInvalidate)
	return srv
}
