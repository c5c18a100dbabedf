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

// PlayerService 控制器所需的服务方法, 由 *service.PlayerService 实现
type PlayerService interface {
	Create(ctx context.Context, p *model.Player) error
	Get(ctx context.Context, id int64) (*model.Player, error)
	Replace(ctx context.Context, p *model.Player) error
	Update(ctx context.Context, id int64, fields map[string]any) (*model.Player, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f model.PlayerFilters, limit, offset int) ([]*model.Player, int64, error)
	Count(ctx context.Context, f model.PlayerFilters) (int64, error)
	BatchUpsert(ctx context.Context, list []*model.Player) (int64, error)
	Details(ctx context.Context, name string) (*model.PlayerStats, error)
}

type PlayerController struct {
	*core.BaseComponent
	Svc PlayerService `infra:"dep:player_service"`
}

func NewPlayerController() *PlayerController {
	return &PlayerController{BaseComponent: core.NewBaseComponent(consts.COMP_CTRL_PLAYER, appconsts.COMPONENT_LOGGING)}
}

func (pc *PlayerController) Routes(r chi.Router) {
	r.Route("/api/v1/players", func(r chi.Router) {
		r.Get("/", pc.listPlayers(writeData))
		r.Post("/", pc.createPlayer)
		r.Get("/count", pc.countPlayers)
		r.Post("/batch_upsert", pc.batchUpsert)

		r.Get("/{key}", pc.getPlayer)
		r.Put("/{key}", pc.replacePlayer)
		r.Patch("/{key}", pc.patchPlayer)
		r.Delete("/{key}", pc.deletePlayer)
		r.Get("/{key}/details", pc.playerDetails(writeData))
	})

	// 原前端客户端使用的路径, 响应不带 data 信封
	r.Route("/api/players", func(r chi.Router) {
		r.Get("/", pc.listPlayers(writeJSON))
		r.Get("/{key}/details", pc.playerDetails(writeJSON))
	})
}

func (pc *PlayerController) listPlayers(write responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pc.list(w, r, write)
	}
}

func (pc *PlayerController) list(w http.ResponseWriter, r *http.Request, write responder) {
	q := r.URL.Query()
	f, err := parseFilters(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := parseIntParam(q, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := parseIntParam(q, "offset")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, total, err := pc.Svc.List(r.Context(), f, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := model.PlayerList{Count: total, Players: make([]model.PlayerSummary, 0, len(list))}
	for _, p := range list {
		out.Players = append(out.Players, p.Summary())
	}
	write(w, http.StatusOK, out)
}

func (pc *PlayerController) countPlayers(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := pc.Svc.Count(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int64{"count": n})
}

func (pc *PlayerController) createPlayer(w http.ResponseWriter, r *http.Request) {
	var p model.Player
	if err := decodeStrict(http.MaxBytesReader(w, r.Body, maxBodyBytes), &p); err != nil {
		writeError(w, r, err)
		return
	}
	if p.ID != 0 {
		writeError(w, r, badRequest("id is assigned by storage and must not be sent"))
		return
	}
	if err := pc.Svc.Create(r.Context(), &p); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, &p)
}

func (pc *PlayerController) batchUpsert(w http.ResponseWriter, r *http.Request) {
	var list []*model.Player
	if err := decodeStrict(http.MaxBytesReader(w, r.Body, maxBatchBytes), &list); err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := pc.Svc.BatchUpsert(r.Context(), list)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int64{"rows": rows})
}

func (pc *PlayerController) getPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := pc.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

// replacePlayer 全量覆盖, body 中的 id 可省略但不能与路径冲突
func (pc *PlayerController) replacePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p model.Player
	if err := decodeStrict(http.MaxBytesReader(w, r.Body, maxBodyBytes), &p); err != nil {
		writeError(w, r, err)
		return
	}
	if p.ID != 0 && p.ID != id {
		writeError(w, r, badRequest("body id %d does not match path id %d", p.ID, id))
		return
	}
	p.ID = id
	if err := pc.Svc.Replace(r.Context(), &p); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, &p)
}

func (pc *PlayerController) patchPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var raw map[string]any
	if err := decodeStrict(http.MaxBytesReader(w, r.Body, maxBodyBytes), &raw); err != nil {
		writeError(w, r, err)
		return
	}
	fields, err := patchFields(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := pc.Svc.Update(r.Context(), id, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (pc *PlayerController) deletePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := pc.Svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (pc *PlayerController) playerDetails(write responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := pathName(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		stats, err := pc.Svc.Details(r.Context(), name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		write(w, http.StatusOK, stats)
	}
}
