package models

// Requests for the ranking HTTP endpoints. Defined in domain for reuse by the CLI.

type RankingRequest struct {
	AssetID      string `query:"asset_id" json:"asset_id"`
	CalcDateFrom string `query:"calc_date_from" json:"calc_date_from" validate:"omitempty,datetime=2006-01-02"`
	CalcDateTo   string `query:"calc_date_to" json:"calc_date_to" validate:"omitempty,datetime=2006-01-02"`
	MaxPages     int    `query:"max_pages" json:"max_pages" default:"10" validate:"gte=1,lte=100"`
	Sort         string `query:"sort" json:"sort"`
	Order        string `query:"order" json:"order" default:"desc" validate:"oneof=asc desc"`
}

type HistoryRequest struct {
	ID int64 `param:"id" json:"id" validate:"required,gt=0"`
}
