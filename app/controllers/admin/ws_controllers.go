package admin

import (
	"github.com/ultranet/catalog/pkg/ctx"
	"github.com/ultranet/catalog/pkg/ws"
)

// Stream upgrades the request to the product change feed.
func Stream(hub *ws.Hub) ctx.HandlerFunc {
	return func(c *ctx.Context) {
		ws.Upgrade(c.W, c.R, hub)
	}
}
