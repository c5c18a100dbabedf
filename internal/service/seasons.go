package service

import (
	"cmp"
	"slices"

	"github.com/grand-thief-cash/mlbeval/internal/model"
)

// sortSeasons 与 dao 的赛季顺序一致: year 升序, NULL 在前, 同年按 id.
// 排序后最后一条为最新赛季
func sortSeasons(seasons []*model.Player) {
	slices.SortStableFunc(seasons, func(a, b *model.Player) int {
		switch {
		case a.Year == nil && b.Year != nil:
			return -1
		case a.Year != nil && b.Year == nil:
			return 1
		case a.Year != nil && *a.Year != *b.Year:
			return cmp.Compare(*a.Year, *b.Year)
		default:
			return cmp.Compare(a.ID, b.ID)
		}
	})
}
