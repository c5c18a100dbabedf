package consts

// 位置过滤取值, 与 Player.Position() 的输出对应
const (
	POSITION_HITTER  = "hitter"
	POSITION_PITCHER = "pitcher"
	POSITION_TWO_WAY = "two-way"

	LABEL_HITTER  = "Hitter"
	LABEL_PITCHER = "Pitcher"
	LABEL_TWO_WAY = "Two-Way"
)

const (
	SORT_BY_WAR   = "war"
	SORT_BY_VALUE = "value"
)

const (
	DEFAULT_PAGE_SIZE  = 50
	MAX_PAGE_SIZE      = 500
	DEFAULT_CHUNK_SIZE = 200
	DEFAULT_CACHE_TTL  = "5m"
	DEFAULT_CACHE_PREF = "mlbeval"
	DEFAULT_DATASOURCE = "mlbeval"
)
