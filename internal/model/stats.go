package model

// PlayerSummary 列表接口返回的精简视图
type PlayerSummary struct {
	ID            int64    `json:"id"`
	Name          *string  `json:"name"`
	Team          *string  `json:"team"`
	Status        *string  `json:"status"`
	Year          *float64 `json:"year"`
	Position      string   `json:"position"`
	WAR           *float64 `json:"war"`
	BaseValue     *float64 `json:"base_value"`
	ContractValue *float64 `json:"contract_value"`
	SurplusValue  *float64 `json:"surplus_value"`
}

func (p *Player) Summary() PlayerSummary {
	return PlayerSummary{
		ID:            p.ID,
		Name:          p.Name,
		Team:          p.Team,
		Status:        p.Status,
		Year:          p.Year,
		Position:      p.Position(),
		WAR:           p.WAR,
		BaseValue:     p.BaseValue,
		ContractValue: p.ContractValue,
		SurplusValue:  p.SurplusValue,
	}
}

type PlayerList struct {
	Count   int64           `json:"count"`
	Players []PlayerSummary `json:"players"`
}

// PlayerStats 球员详情, 每个赛季一条 projection
type PlayerStats struct {
	Name        string       `json:"name"`
	Team        string       `json:"team"`
	Position    string       `json:"position"`
	Projections []Projection `json:"projections"`
}

type Projection struct {
	Year     *float64       `json:"year"`
	WAR      *float64       `json:"war"`
	Value    ValueBlock     `json:"value"`
	Hitting  *HittingBlock  `json:"hitting,omitempty"`
	Pitching *PitchingBlock `json:"pitching,omitempty"`
}

type ValueBlock struct {
	Base     *float64 `json:"base"`
	Contract *float64 `json:"contract"`
	Surplus  *float64 `json:"surplus"`
}

type HittingBlock struct {
	Age     *float64 `json:"age"`
	BBPct   *float64 `json:"bb_pct"`
	KPct    *float64 `json:"k_pct"`
	AVG     *float64 `json:"avg"`
	OBP     *float64 `json:"obp"`
	SLG     *float64 `json:"slg"`
	WOBA    *float64 `json:"woba"`
	WRCPlus *float64 `json:"wrc_plus"`
	EV      *float64 `json:"ev"`
	Off     *float64 `json:"off"`
	BsR     *float64 `json:"bsr"`
	Def     *float64 `json:"def"`
}

type PitchingBlock struct {
	Age          *float64 `json:"age"`
	FIP          *float64 `json:"fip"`
	SIERA        *float64 `json:"siera"`
	KPct         *float64 `json:"k_pct"`
	BBPct        *float64 `json:"bb_pct"`
	GBPct        *float64 `json:"gb_pct"`
	FBPct        *float64 `json:"fb_pct"`
	StuffPlus    *float64 `json:"stuff_plus"`
	LocationPlus *float64 `json:"location_plus"`
	PitchingPlus *float64 `json:"pitching_plus"`
	FBV          *float64 `json:"fbv"`
}

// Projection 单赛季投影, 打击/投球块只在该赛季有对应数据时出现
func (p *Player) Projection() Projection {
	pr := Projection{
		Year:  p.Year,
		WAR:   p.WAR,
		Value: ValueBlock{Base: p.BaseValue, Contract: p.ContractValue, Surplus: p.SurplusValue},
	}
	if p.HasHitting() {
		pr.Hitting = &HittingBlock{
			Age: p.AgeBat, BBPct: p.BBPctBat, KPct: p.KPctBat,
			AVG: p.AVG, OBP: p.OBP, SLG: p.SLG, WOBA: p.WOBA, WRCPlus: p.WRCPlus,
			EV: p.EV, Off: p.Off, BsR: p.BsR, Def: p.DefValue,
		}
	}
	if p.HasPitching() {
		pr.Pitching = &PitchingBlock{
			Age: p.AgePit, FIP: p.FIP, SIERA: p.SIERA, KPct: p.KPctPit, BBPct: p.BBPctPit,
			GBPct: p.GBPct, FBPct: p.FBPct, StuffPlus: p.StuffPlus,
			LocationPlus: p.LocationPlus, PitchingPlus: p.PitchingPlus, FBV: p.FBV,
		}
	}
	return pr
}
