package model

import "github.com/grand-thief-cash/mlbeval/internal/consts"

// Player 一名球员在一个赛季的估值与统计记录. 所有统计字段可空, nil 与 0 含义不同
type Player struct {
	ID     int64    `gorm:"column:id;primaryKey;autoIncrement;index:ix_players_id" json:"id"`
	Name   *string  `gorm:"column:name;size:255;index:ix_players_name" json:"name"`
	Team   *string  `gorm:"column:team;size:255" json:"team"`
	Status *string  `gorm:"column:status;size:255" json:"status"`
	Year   *float64 `gorm:"column:year" json:"year"`

	WAR           *float64 `gorm:"column:war" json:"war"`
	BaseValue     *float64 `gorm:"column:base_value" json:"base_value"`
	ContractValue *float64 `gorm:"column:contract_value" json:"contract_value"`
	SurplusValue  *float64 `gorm:"column:surplus_value" json:"surplus_value"`

	AgeBat   *float64 `gorm:"column:age_bat" json:"age_bat"`
	AgePit   *float64 `gorm:"column:age_pit" json:"age_pit"`
	BBPctBat *float64 `gorm:"column:bb_pct_bat" json:"bb_pct_bat"`
	BBPctPit *float64 `gorm:"column:bb_pct_pit" json:"bb_pct_pit"`
	KPctBat  *float64 `gorm:"column:k_pct_bat" json:"k_pct_bat"`
	KPctPit  *float64 `gorm:"column:k_pct_pit" json:"k_pct_pit"`

	// hitting
	AVG      *float64 `gorm:"column:avg" json:"avg"`
	OBP      *float64 `gorm:"column:obp" json:"obp"`
	SLG      *float64 `gorm:"column:slg" json:"slg"`
	WOBA     *float64 `gorm:"column:woba" json:"woba"`
	WRCPlus  *float64 `gorm:"column:wrc_plus" json:"wrc_plus"`
	EV       *float64 `gorm:"column:ev" json:"ev"`
	Off      *float64 `gorm:"column:off" json:"off"`
	BsR      *float64 `gorm:"column:bsr" json:"bsr"`
	DefValue *float64 `gorm:"column:def_value" json:"def_value"`

	// pitching
	FIP          *float64 `gorm:"column:fip" json:"fip"`
	SIERA        *float64 `gorm:"column:siera" json:"siera"`
	GBPct        *float64 `gorm:"column:gb_pct" json:"gb_pct"`
	FBPct        *float64 `gorm:"column:fb_pct" json:"fb_pct"`
	StuffPlus    *float64 `gorm:"column:stuff_plus" json:"stuff_plus"`
	LocationPlus *float64 `gorm:"column:location_plus" json:"location_plus"`
	PitchingPlus *float64 `gorm:"column:pitching_plus" json:"pitching_plus"`
	FBV          *float64 `gorm:"column:fbv" json:"fbv"`
}

func (Player) TableName() string { return "players" }

// Label 供日志与调试输出使用, 缺失的名字渲染为空串
func (p *Player) Label() string {
	if p == nil || p.Name == nil {
		return "Player "
	}
	return "Player " + *p.Name
}

func (p *Player) String() string { return p.Label() }

func (p *Player) HasHitting() bool {
	return anySet(p.AVG, p.OBP, p.SLG, p.WOBA, p.WRCPlus, p.EV, p.Off, p.BsR, p.DefValue)
}

func (p *Player) HasPitching() bool {
	return anySet(p.FIP, p.SIERA, p.GBPct, p.FBPct, p.StuffPlus, p.LocationPlus, p.PitchingPlus, p.FBV)
}

// Position 由统计字段推导, 不落库
func (p *Player) Position() string {
	return positionLabel(p.HasHitting(), p.HasPitching())
}

func positionLabel(hitting, pitching bool) string {
	switch {
	case hitting && pitching:
		return consts.LABEL_TWO_WAY
	case pitching:
		return consts.LABEL_PITCHER
	case hitting:
		return consts.LABEL_HITTER
	default:
		return ""
	}
}

// PositionOf 汇总多个赛季后的位置, 任一赛季有打击/投球数据即计入
func PositionOf(seasons []*Player) string {
	var hitting, pitching bool
	for _, s := range seasons {
		hitting = hitting || s.HasHitting()
		pitching = pitching || s.HasPitching()
	}
	return positionLabel(hitting, pitching)
}

func anySet(vals ...*float64) bool {
	for _, v := range vals {
		if v != nil {
			return true
		}
	}
	return false
}

func Str(s string) *string { return &s }

func Float(f float64) *float64 { return &f }

// Deref 把 nil 当作 0
func Deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func DerefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
