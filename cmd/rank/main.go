package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"InlineRank/internal/di"
	"InlineRank/internal/domain/models"
	"InlineRank/internal/export"
	"InlineRank/internal/services/analytics"
	"InlineRank/internal/usecase"
	"InlineRank/pkg/config"
	xhttp "InlineRank/pkg/http"
	"InlineRank/pkg/metrics"
)

var (
	configPath string
	format     string
	req        models.RankingRequest
)

var rootCmd = &cobra.Command{
	Use:   "rank",
	Short: "Fetch, score and print one batch of inline warrants",
	Long: `Fetch the current inline warrant listing, enrich every instrument with its
history statistics and barrier model, score the batch and print it.

Examples:
  rank --asset -4 --sort optimized_score
  rank --from 2025-08-01 --to 2025-12-31 --format csv > batch.csv
  rank history 123456`,
	SilenceUsage: true,
	RunE:         runRank,
}

var historyCmd = &cobra.Command{
	Use:   "history <product-id>",
	Short: "Print the price history statistics of one instrument",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the metrics usable as sort keys",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeJSON(cmd.OutOrStdout(), analytics.Catalog())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file path (defaults apply when empty)")
	pf.StringVar(&format, "format", "table", "output format: table, csv or json")

	f := rootCmd.Flags()
	f.StringVar(&req.AssetID, "asset", "", "underlying asset id")
	f.StringVar(&req.CalcDateFrom, "from", "", "calc date from (YYYY-MM-DD)")
	f.StringVar(&req.CalcDateTo, "to", "", "calc date to (YYYY-MM-DD)")
	f.IntVar(&req.MaxPages, "max-pages", 0, "product search page limit")
	f.StringVar(&req.Sort, "sort", "", "metric key to sort by (see 'rank catalog')")
	f.StringVar(&req.Order, "order", "desc", "asc or desc")

	rootCmd.AddCommand(historyCmd, catalogCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		cfg := config.Default()
		cfg.ApplyEnv(os.Getenv)
		return cfg, cfg.Validate()
	}
	return config.LoadWithEnv(configPath)
}

func runRank(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if req.MaxPages == 0 {
		req.MaxPages = cfg.Upstream.MaxPages
	}
	if verr := xhttp.ValidateStruct(&req); verr != nil {
		return fmt.Errorf("invalid flags: %s: %s", verr[0].Field, verr[0].Message)
	}
	q, err := usecase.ParseRankingRequest(req)
	if err != nil {
		return err
	}

	l, err := di.ProvideLogger(cfg)
	if err != nil {
		return err
	}
	market, err := di.ProvideMarketData(cfg, l)
	if err != nil {
		return err
	}
	stats := di.ProvideStatsCalculator(cfg)
	uc := usecase.NewRankingUseCase(market, di.ProvideEngine(cfg, stats, l),
		usecase.WithSpotCache(di.ProvideSpotCache(cfg, nil)),
		usecase.WithPool(di.ProvidePool(cfg, l)),
		usecase.WithMetrics(metrics.Nop{}),
		usecase.WithLogger(l),
	)

	r, err := uc.Rank(cmd.Context(), q)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch format {
	case "csv":
		return export.WriteCSV(out, r.Rows)
	case "json":
		return writeJSON(out, r)
	case "table":
		if err := export.WriteTable(out, r.Rows); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "batch %s: %d ranked, %d excluded\n", r.BatchID, len(r.Rows), len(r.Excluded))
		return nil
	default:
		return errors.New("unknown format " + strconv.Quote(format))
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid product id %q", args[0])
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := di.ProvideLogger(cfg)
	if err != nil {
		return err
	}
	market, err := di.ProvideMarketData(cfg, l)
	if err != nil {
		return err
	}
	h, err := usecase.NewHistoryUseCase(market, nil, di.ProvideStatsCalculator(cfg), l).History(cmd.Context(), id)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), h)
	}
	s := h.Stats
	fmt.Fprintf(cmd.OutOrStdout(), "product %d: %d observations\nvolatility %s%%  bollinger %s  var95 %s\n",
		h.ProductID, len(h.Observations), export.Percent(s.Volatility), export.Fixed2(s.BollingerWidth), export.Fixed2(s.VaR95))
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
