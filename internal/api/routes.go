package api

import (
	"fmt"

	"github.com/go-chi/chi/v5"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/http_server"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
	bizConsts "github.com/grand-thief-cash/mlbeval/internal/consts"
	"github.com/grand-thief-cash/mlbeval/internal/controller"
)

func init() {
	http_server.RegisterRoutes(func(r chi.Router, c *core.Container) error {
		playerCtrl, err := core.ResolveAs[*controller.PlayerController](c, bizConsts.COMP_CTRL_PLAYER)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", bizConsts.COMP_CTRL_PLAYER, err)
		}
		tradeCtrl, err := core.ResolveAs[*controller.TradeController](c, bizConsts.COMP_CTRL_TRADE)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", bizConsts.COMP_CTRL_TRADE, err)
		}

		playerCtrl.Routes(r)
		tradeCtrl.Routes(r)
		r.Get("/openapi.yaml", serveOpenAPI)
		return nil
	})
}
