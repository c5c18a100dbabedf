package model

// PlayerFilters 列表查询条件, 零值字段表示不过滤
type PlayerFilters struct {
	Year     *float64
	Team     string
	Position string // hitter | pitcher | two-way
	Search   string
	IDs      []int64
	SortBy   string // war | value
}
