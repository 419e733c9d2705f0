// curvecalc bootstraps a piecewise-flat forward curve from instrument
// quotes and prints the calibrated pillars.
//
// Quotes come from a JSON file (-quotes) or from Postgres (DATABASE_URL,
// optionally via a .env file).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vicanso/go-charts/v2"

	"github.com/meenmo/qflib/bootstrap"
	"github.com/meenmo/qflib/config"
	"github.com/meenmo/qflib/marketdata"
	"github.com/meenmo/qflib/marketdata/pg"
	"github.com/meenmo/qflib/pwflat"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("curvecalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dateStr := fs.String("date", "", "Curve date in YYYY-MM-DD format (default today)")
	quotesPath := fs.String("quotes", "", "JSON quote file; omit to read from Postgres (DATABASE_URL)")
	plotPath := fs.String("plot", "", "Write a PNG of the zero and forward curves to this path")
	tol := fs.Float64("tol", config.DefaultConfig.Tolerance, "Present-value tolerance per pillar")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.JSONFormatter{})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	curveDate := time.Now().UTC().Truncate(24 * time.Hour)
	if *dateStr != "" {
		d, err := time.Parse("2006-01-02", *dateStr)
		if err != nil {
			logger.Errorf("bad -date %q: %v", *dateStr, err)
			return 2
		}
		curveDate = d
	}

	feed, cleanup, err := openFeed(*quotesPath, logger)
	if err != nil {
		logger.Errorf("open feed: %v", err)
		return 1
	}
	defer cleanup()

	quotes, err := feed.Quotes(curveDate)
	if err != nil {
		logger.Errorf("load quotes: %v", err)
		return 1
	}
	logger.WithFields(logrus.Fields{
		"date":   curveDate.Format("2006-01-02"),
		"quotes": len(quotes),
	}).Debug("quotes loaded")

	ins, err := marketdata.BuildInstruments(quotes)
	if err != nil {
		logger.Errorf("build instruments: %v", err)
		return 1
	}

	cfg := config.DefaultConfig
	cfg.Tolerance = *tol
	curve, err := bootstrap.Bootstrap(ins, nil, cfg)
	if err != nil {
		logger.Errorf("bootstrap: %v", err)
		return 1
	}

	printCurve(stdout, curveDate, curve)

	if *plotPath != "" {
		if err := plotCurve(*plotPath, curve); err != nil {
			logger.Errorf("plot: %v", err)
			return 1
		}
		logger.WithField("path", *plotPath).Debug("plot written")
	}
	return 0
}

func openFeed(quotesPath string, logger *logrus.Logger) (marketdata.Feed, func(), error) {
	if quotesPath != "" {
		feed, err := loadQuoteFile(quotesPath)
		return feed, func() {}, err
	}

	if err := godotenv.Load(); err != nil {
		logger.Debugf("no .env file: %v", err)
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, nil, fmt.Errorf("no -quotes file and DATABASE_URL is not set")
	}
	feed, err := pg.Open(dsn)
	if err != nil {
		return nil, nil, err
	}
	return feed, func() { feed.Close() }, nil
}

// loadQuoteFile reads a JSON object of {"YYYY-MM-DD": [dated quote, ...]};
// calendar maturities are resolved against the curve date on read.
func loadQuoteFile(path string) (marketdata.Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var byDate map[string][]marketdata.DatedQuote
	if err := json.Unmarshal(data, &byDate); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return datedFileFeed(byDate), nil
}

type datedFileFeed map[string][]marketdata.DatedQuote

func (f datedFileFeed) Quotes(curveDate time.Time) ([]marketdata.Quote, error) {
	dated, ok := f[curveDate.Format("2006-01-02")]
	if !ok {
		return nil, fmt.Errorf("%w: %s", marketdata.ErrNoQuotes, curveDate.Format("2006-01-02"))
	}
	return marketdata.ResolveQuotes(curveDate, dated)
}

func printCurve(w io.Writer, curveDate time.Time, c *pwflat.Curve) {
	fmt.Fprintf(w, "Curve date: %s\n", curveDate.Format("2006-01-02"))
	fmt.Fprintf(w, "%-10s %-12s %-12s %-12s\n", "time", "forward", "discount", "zero")
	for _, k := range c.Knots() {
		fmt.Fprintf(w, "%-10.4f %-12.8f %-12.8f %-12.8f\n",
			k.Time, k.Rate, c.Discount(k.Time), c.Spot(k.Time))
	}
}

func plotCurve(path string, c *pwflat.Curve) error {
	knots := c.Knots()
	if len(knots) == 0 {
		return fmt.Errorf("empty curve")
	}
	horizon := knots[len(knots)-1].Time

	labels := make([]string, 0, 101)
	zeros := make([]float64, 0, 101)
	forwards := make([]float64, 0, 101)
	for i := 1; i <= 100; i++ {
		u := horizon * float64(i) / 100
		labels = append(labels, fmt.Sprintf("%.2f", u))
		zeros = append(zeros, c.Spot(u)*100)
		forwards = append(forwards, c.Forward(u)*100)
	}

	painter, err := charts.LineRender([][]float64{zeros, forwards},
		charts.TitleTextOptionFunc("Bootstrapped curve (%)"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: 10}),
		charts.LegendOptionFunc(charts.LegendOption{Data: []string{"zero", "forward"}}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return err
	}
	img, err := painter.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, img, 0o644)
}
