package sg

import (
	"InlineRank/internal/domain/models"
	"InlineRank/pkg/util"
)

// Wire types of the EmcWebApi. Only the fields the ranking needs are decoded.

type searchResponse struct {
	Products []productDTO `json:"Products"`
}

type productDTO struct {
	ID           int64   `json:"Id"`
	Isin         string  `json:"Isin"`
	Code         string  `json:"Code"`
	AssetID      int64   `json:"AssetId"`
	AssetName    string  `json:"AssetName"`
	Currency     string  `json:"Currency"`
	MaturityDate string  `json:"MaturityDate"`
	IssueDate    string  `json:"IssueDate"`
	LowerBarrier float64 `json:"LowerBarrierInlineWarrant"`
	UpperBarrier float64 `json:"UpperBarrierInlineWarrant"`
	Bid          float64 `json:"Bid"`
	Offer        float64 `json:"Offer"`
}

type priceDTO struct {
	Date            string  `json:"Date"`
	UnderlyingPrice float64 `json:"UnderlyingPrice"`
	Bid             float64 `json:"Bid"`
	Ask             float64 `json:"Ask"`
}

// toModel leaves unparseable dates zero; the engine rejects those snapshots.
func (p productDTO) toModel() models.ProductSnapshot {
	issue, _ := util.ParseTime(p.IssueDate)
	maturity, _ := util.ParseTime(p.MaturityDate)
	return models.ProductSnapshot{
		ID:           p.ID,
		Isin:         p.Isin,
		Code:         p.Code,
		AssetID:      p.AssetID,
		AssetName:    p.AssetName,
		Currency:     p.Currency,
		LowerBarrier: p.LowerBarrier,
		UpperBarrier: p.UpperBarrier,
		Bid:          p.Bid,
		Offer:        p.Offer,
		IssueDate:    issue,
		MaturityDate: maturity,
	}
}

func (p priceDTO) toModel() (models.PriceObservation, bool) {
	d, ok := util.ParseTime(p.Date)
	if !ok {
		return models.PriceObservation{}, false
	}
	return models.PriceObservation{Date: d, UnderlyingPrice: p.UnderlyingPrice, Bid: p.Bid, Ask: p.Ask}, true
}
