package dao

import (
	"strings"

	"github.com/grand-thief-cash/mlbeval/internal/model"
)

func normalizePlayer(p *model.Player) {
	p.Name = trimPtr(p.Name)
	p.Team = trimPtr(p.Team)
	p.Status = trimPtr(p.Status)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func trimValue(v any) any {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case *string:
		return trimPtr(t)
	default:
		return v
	}
}
