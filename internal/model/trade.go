package model

type TradeRequest struct {
	Team1Players []string `json:"team1_players"`
	Team2Players []string `json:"team2_players"`
}

type TradeAnalysis struct {
	AnalysisID      string    `json:"analysis_id"`
	Team1           TradeSide `json:"team1"`
	Team2           TradeSide `json:"team2"`
	ValueDifference float64   `json:"value_difference"`
}

type TradeSide struct {
	TotalValue float64       `json:"total_value"`
	Players    []TradePlayer `json:"players"`
}

type TradePlayer struct {
	Name              string             `json:"name"`
	Team              string             `json:"team"`
	Status            string             `json:"status"`
	TotalSurplus      float64            `json:"total_surplus"`
	TotalContract     float64            `json:"total_contract"`
	YearlyProjections []YearlyProjection `json:"yearly_projections"`
}

type YearlyProjection struct {
	Year          *float64 `json:"year"`
	WAR           *float64 `json:"war"`
	BaseValue     *float64 `json:"base_value"`
	ContractValue *float64 `json:"contract_value"`
	SurplusValue  *float64 `json:"surplus_value"`
	Status        *string  `json:"status"`
}
