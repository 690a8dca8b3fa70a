// Command ticket-export dumps the print journal as gzip-compressed NDJSON,
// one printed ticket per line, for reporting and archival.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"

	"github.com/fornace/kitchen-panel/internal/printer"
)

const sinceLayout = "2006-01-02"

func main() {
	var (
		databaseURL string
		outPath     string
		sinceStr    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&outPath, "out", "tickets.ndjson.gz", "output file path")
	flag.StringVar(&sinceStr, "since", "", "export entries printed on or after this date (YYYY-MM-DD, default: all)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	since := time.Time{}
	if sinceStr != "" {
		t, err := time.Parse(sinceLayout, sinceStr)
		if err != nil {
			slog.Error("invalid --since date", slog.String("value", sinceStr))
			os.Exit(1)
		}
		since = t
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, outPath, since); err != nil {
		slog.Error("ticket export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("ticket export completed", slog.String("out", outPath))
}

func run(ctx context.Context, databaseURL, outPath string, since time.Time) error {
	pool, err := printer.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	entries, err := printer.NewJournal(pool).ListSince(ctx, since)
	if err != nil {
		return errors.Wrap(err, "list journal entries")
	}
	slog.Info("exporting entries", slog.Int("count", len(entries)))

	f, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	defer f.Close()

	zw := pgzip.NewWriter(f)
	w := bufio.NewWriter(zw)

	for _, e := range entries {
		var enc jx.Encoder
		encodeEntry(&enc, e)
		if _, err := w.Write(enc.Bytes()); err != nil {
			return errors.Wrap(err, "write entry")
		}
		if err := w.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "write entry")
		}
	}

	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "flush output")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "close gzip stream")
	}
	return f.Close()
}

func encodeEntry(e *jx.Encoder, entry printer.Entry) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(entry.ID)
	e.FieldStart("orderId")
	e.Int64(entry.OrderID)
	e.FieldStart("orderStatus")
	e.Str(entry.OrderStatus)
	e.FieldStart("total")
	e.Str(entry.Total.String())
	e.FieldStart("state")
	e.Str(entry.State)
	e.FieldStart("createdAt")
	e.Str(entry.CreatedAt.Format(time.RFC3339))
	if entry.PrintedAt != nil {
		e.FieldStart("printedAt")
		e.Str(entry.PrintedAt.Format(time.RFC3339))
	}
	e.FieldStart("body")
	e.Str(entry.Body)
	e.ObjEnd()
}
