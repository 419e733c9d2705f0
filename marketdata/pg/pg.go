// Package pg provides a Postgres-backed quote feed.
package pg

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/meenmo/qflib/instrument"
	"github.com/meenmo/qflib/marketdata"
)

// Expected table:
//
//	CREATE TABLE instrument_quotes (
//	    quote_date     date             NOT NULL,
//	    kind           text             NOT NULL,
//	    start_years    double precision NOT NULL DEFAULT 0,
//	    maturity_years double precision NOT NULL,
//	    rate           double precision NOT NULL DEFAULT 0,
//	    price          double precision NOT NULL DEFAULT 0,
//	    frequency      integer          NOT NULL DEFAULT 0
//	);
const quotesQuery = `
SELECT kind, start_years, maturity_years, rate, price, frequency
FROM instrument_quotes
WHERE quote_date = $1
ORDER BY maturity_years`

// Feed reads calibration quotes from Postgres.
type Feed struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*Feed, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("pg.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pg.Open: ping: %w", err)
	}
	return &Feed{db: db}, nil
}

// NewFeed wraps an existing connection pool.
func NewFeed(db *sql.DB) *Feed {
	return &Feed{db: db}
}

func (f *Feed) Close() error {
	return f.db.Close()
}

func (f *Feed) Quotes(curveDate time.Time) ([]marketdata.Quote, error) {
	rows, err := f.db.Query(quotesQuery, curveDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("pg.Quotes: %w", err)
	}
	defer rows.Close()

	var quotes []marketdata.Quote
	for rows.Next() {
		var q marketdata.Quote
		var kind string
		var freq int
		if err := rows.Scan(&kind, &q.Start, &q.Maturity, &q.Rate, &q.Price, &freq); err != nil {
			return nil, fmt.Errorf("pg.Quotes: scan: %w", err)
		}
		q.Kind = marketdata.Kind(kind)
		q.Frequency = instrument.Frequency(freq)
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg.Quotes: %w", err)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: %s", marketdata.ErrNoQuotes, curveDate.Format("2006-01-02"))
	}
	return quotes, nil
}
