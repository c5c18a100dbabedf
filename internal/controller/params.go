package controller

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/grand-thief-cash/mlbeval/internal/consts"
	"github.com/grand-thief-cash/mlbeval/internal/model"
)

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "key")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("player id must be a positive integer, got %q", raw)
	}
	return id, nil
}

func pathName(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "key")
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", badRequest("invalid player name %q", raw)
	}
	return name, nil
}

func parseFilters(q url.Values) (model.PlayerFilters, error) {
	f := model.PlayerFilters{
		Team:     strings.TrimSpace(q.Get("team")),
		Position: strings.ToLower(strings.TrimSpace(q.Get("position"))),
		Search:   strings.TrimSpace(q.Get("search")),
		SortBy:   strings.ToLower(strings.TrimSpace(q.Get("sort_by"))),
	}
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, badRequest("year must be numeric, got %q", v)
		}
		f.Year = &y
	}
	if v := strings.TrimSpace(q.Get("ids")); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return f, badRequest("ids must be comma separated integers, got %q", v)
			}
			f.IDs = append(f.IDs, id)
		}
	}
	switch f.Position {
	case "", consts.POSITION_HITTER, consts.POSITION_PITCHER, consts.POSITION_TWO_WAY:
	default:
		return f, badRequest("position must be one of hitter, pitcher, two-way")
	}
	switch f.SortBy {
	case "", consts.SORT_BY_WAR, consts.SORT_BY_VALUE:
	default:
		return f, badRequest("sort_by must be war or value")
	}
	return f, nil
}

func parseIntParam(q url.Values, key string) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, badRequest("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

// patchFields 按列类型校验 PATCH 对象, null 表示清空该列
func patchFields(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		col, ok := model.ColumnByName(k)
		if !ok || !model.IsPatchable(k) {
			return nil, badRequest("unknown or read-only column %q", k)
		}
		if v == nil {
			out[k] = nil
			continue
		}
		switch col.Type {
		case model.ColumnText:
			s, ok := v.(string)
			if !ok {
				return nil, badRequest("column %q expects a string", k)
			}
			out[k] = s
		case model.ColumnNumeric:
			n, ok := v.(float64)
			if !ok {
				return nil, badRequest("column %q expects a number", k)
			}
			out[k] = n
		}
	}
	return out, nil
}
