package consts

const (
	COMP_DAO_PLAYER   = "player_dao"
	COMP_CACHE_PLAYER = "player_cache"
	COMP_SVC_PLAYER   = "player_service"
	COMP_SVC_TRADE    = "trade_service"
	COMP_CTRL_PLAYER  = "player_ctrl"
	COMP_CTRL_TRADE   = "trade_ctrl"
)
