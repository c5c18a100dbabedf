package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	appconsts "github.com/grand-thief-cash/mlbeval/infra/application/consts"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
	"github.com/grand-thief-cash/mlbeval/internal/consts"
	"github.com/grand-thief-cash/mlbeval/internal/model"
)

type TradeAnalyzer interface {
	Analyze(ctx context.Context, team1, team2 []string) (*model.TradeAnalysis, error)
}

type TradeController struct {
	*core.BaseComponent
	Svc TradeAnalyzer `infra:"dep:trade_service"`
}

func NewTradeController() *TradeController {
	return &TradeController{BaseComponent: core.NewBaseComponent(consts.COMP_CTRL_TRADE, appconsts.COMPONENT_LOGGING)}
}

func (tc *TradeController) Routes(r chi.Router) {
	r.Post("/api/v1/trades/analyze", tc.analyze(writeData))
	r.Post("/api/trades/analyze", tc.analyze(writeJSON))
}

func (tc *TradeController) analyze(write responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.TradeRequest
		if err := decodeStrict(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := tc.Svc.Analyze(r.Context(), req.Team1Players, req.Team2Players)
		if err != nil {
			writeError(w, r, err)
			return
		}
		write(w, http.StatusOK, out)
	}
}
