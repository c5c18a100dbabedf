package dao

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/grand-thief-cash/mlbeval/internal/consts"
	"github.com/grand-thief-cash/mlbeval/internal/model"
)

var (
	hittingPredicate  = anyNotNull(model.ColumnsInGroup(model.GroupHitting))
	pitchingPredicate = anyNotNull(model.ColumnsInGroup(model.GroupPitching))
)

func anyNotNull(cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " IS NOT NULL"
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func applyFilters(q *gorm.DB, f model.PlayerFilters) (*gorm.DB, error) {
	if f.Year != nil {
		q = q.Where("year = ?", *f.Year)
	}
	if team := strings.TrimSpace(f.Team); team != "" {
		q = q.Where("UPPER(team) = ?", strings.ToUpper(team))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(s))+"%")
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	switch strings.ToLower(strings.TrimSpace(f.Position)) {
	case "":
	case consts.POSITION_HITTER:
		q = q.Where(hittingPredicate)
	case consts.POSITION_PITCHER:
		q = q.Where(pitchingPredicate)
	case consts.POSITION_TWO_WAY:
		q = q.Where(hittingPredicate).Where(pitchingPredicate)
	default:
		return nil, fmt.Errorf("%w: position %q", ErrInvalidFilter, f.Position)
	}
	return q, nil
}

// applyOrder 排序列为 NULL 的记录排在最后, id 兜底保证分页稳定
func applyOrder(q *gorm.DB, sortBy string) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "":
		return orderSeasons(q.Order("name ASC")), nil
	case consts.SORT_BY_WAR:
		return q.Order("war IS NULL").Order("war DESC").Order("id ASC"), nil
	case consts.SORT_BY_VALUE:
		return q.Order("surplus_value IS NULL").Order("surplus_value DESC").Order("id ASC"), nil
	default:
		return nil, fmt.Errorf("%w: sort_by %q", ErrInvalidFilter, sortBy)
	}
}

// orderSeasons 赛季按 year 升序, year 为 NULL 的排最前, 各方言一致; 最后一条即最新赛季
func orderSeasons(q *gorm.DB) *gorm.DB {
	return q.Order("year IS NULL DESC").Order("year ASC").Order("id ASC")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike 用户输入中的 % _ 按字面匹配, 转义符为 '!'
func escapeLike(s string) string { return likeEscaper.Replace(s) }
