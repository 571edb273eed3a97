package export

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/gocarina/gocsv"

	"InlineRank/internal/domain/models"
)

// Row is the display form of one ranked instrument.
type Row struct {
	Rank               int    `csv:"rank"`
	ID                 int64  `csv:"id"`
	Isin               string `csv:"isin"`
	Asset              string `csv:"asset"`
	Maturity           string `csv:"maturity"`
	DaysUntilExpiry    int    `csv:"days_left"`
	LowerBarrier       string `csv:"lower_barrier"`
	UpperBarrier       string `csv:"upper_barrier"`
	UnderlyingPrice    string `csv:"underlying"`
	RangePercent       string `csv:"range_pct"`
	DiffToLower        string `csv:"diff_lower_pct"`
	DiffToUpper        string `csv:"diff_upper_pct"`
	Bid                string `csv:"bid"`
	Offer              string `csv:"offer"`
	Spread             string `csv:"spread"`
	Volatility         string `csv:"volatility_pct"`
	BollingerWidth     string `csv:"bollinger_width"`
	VaR95              string `csv:"var95"`
	SigmaDistanceLower string `csv:"sigma_lower"`
	SigmaDistanceUpper string `csv:"sigma_upper"`
	ProbStay           string `csv:"prob_stay_pct"`
	BlackScholesPrice  string `csv:"fair_value"`
	Signal             string `csv:"signal"`
	ExpectedProfit     string `csv:"expected_profit"`
	ExpectedReturnPct  string `csv:"expected_return_pct"`
	PotentialReturn    string `csv:"potential_return_pct"`
	Score              string `csv:"score"`
	OptimizedScore     string `csv:"optimized_score"`
	OpitzScore         string `csv:"opitz_score"`
}

// Rows formats rows in their current order. Numbers are never re-parsed from
// these strings.
func Rows(rows []models.ScoredInstrument) []Row {
	out := make([]Row, len(rows))
	for i := range rows {
		s := &rows[i]
		out[i] = Row{
			Rank:               i + 1,
			ID:                 s.ID,
			Isin:               s.Isin,
			Asset:              s.AssetName,
			Maturity:           s.MaturityDate.Format(time.DateOnly),
			DaysUntilExpiry:    s.DaysUntilExpiry,
			LowerBarrier:       Fixed2(s.LowerBarrier),
			UpperBarrier:       Fixed2(s.UpperBarrier),
			UnderlyingPrice:    Fixed2(s.UnderlyingPrice),
			RangePercent:       Fixed2(s.RangePercent),
			DiffToLower:        Fixed2(s.DiffToLower),
			DiffToUpper:        Fixed2(s.DiffToUpper),
			Bid:                Fixed2(s.Bid),
			Offer:              Fixed2(s.Offer),
			Spread:             Fixed2(s.Spread),
			Volatility:         Percent(s.Volatility),
			BollingerWidth:     Fixed2(s.BollingerWidth),
			VaR95:              Fixed2(s.VaR95),
			SigmaDistanceLower: Fixed2(s.SigmaDistanceLower),
			SigmaDistanceUpper: Fixed2(s.SigmaDistanceUpper),
			ProbStay:           Percent(s.ProbStay),
			BlackScholesPrice:  Fixed2(s.BlackScholesPrice),
			Signal:             s.BlackScholesSignal.String(),
			ExpectedProfit:     Fixed2(s.ExpectedProfit),
			ExpectedReturnPct:  Fixed2Ptr(s.ExpectedReturnPct),
			PotentialReturn:    Fixed2(s.PotentialReturn),
			Score:              Fixed2(s.Score),
			OptimizedScore:     Fixed2(s.OptimizedScore),
			OpitzScore:         Fixed2(s.OpitzScore),
		}
	}
	return out
}

// WriteCSV writes a header line and one line per row.
func WriteCSV(w io.Writer, rows []models.ScoredInstrument) error {
	if err := gocsv.Marshal(Rows(rows), w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteTable prints a compact aligned summary for terminals.
func WriteTable(w io.Writer, rows []models.ScoredInstrument) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tISIN\tDays\tSpot\tRange %\tOffer\tProb %\tFair\tSignal\tRet %\tScore\tOpt\tOpitz\t")
	for _, r := range Rows(rows) {
		fmt.Fprintln(tw, strconv.Itoa(r.Rank)+"\t"+r.Isin+"\t"+strconv.Itoa(r.DaysUntilExpiry)+"\t"+
			r.UnderlyingPrice+"\t"+r.RangePercent+"\t"+r.Offer+"\t"+r.ProbStay+"\t"+r.BlackScholesPrice+"\t"+
			r.Signal+"\t"+r.ExpectedReturnPct+"\t"+r.Score+"\t"+r.OptimizedScore+"\t"+r.OpitzScore+"\t")
	}
	return tw.Flush()
}
