// Command stockgraph computes per-product stock availability for one
// Odoo warehouse and reports it to stdout, a SQL sink, or both.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/config"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/output"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/pipeline"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/product"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/sink"
)

// intSliceFlag collects a flag.Var-bound int flag into a slice, one
// value per repetition (-product 1 -product 2 -product 3).
type intSliceFlag struct {
	values []int32
}

func (f *intSliceFlag) String() string {
	return fmt.Sprint(f.values)
}

func (f *intSliceFlag) Set(value string) error {
	v, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid -product value %q: %w", value, err)
	}
	f.values = append(f.values, int32(v))
	return nil
}

// ConfigurationError means the CLI's own flags were invalid and no
// database connection was ever attempted.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return e.Reason }

// MissingAvailabilityError means a requested product never got a
// computed availability: it was never reached by graph traversal from
// this warehouse, which usually means a bad product id.
type MissingAvailabilityError struct {
	ProductID product.ID
}

func (e *MissingAvailabilityError) Error() string {
	return fmt.Sprintf("missing availability for product_id=%d", e.ProductID)
}

func main() {
	var products intSliceFlag
	warehouse := flag.Int("warehouse", 0, "warehouse id to compute availability for (required)")
	flag.Var(&products, "product", "product id to include (repeatable; default: every computed product)")
	srcDBURL := flag.String("src-db-url", "", "source Odoo Postgres connection string (required)")
	logLevel := flag.String("log-level", "warn", "log level (off|error|warn|info|debug|trace)")
	allowNegative := flag.Bool("allow-negative", false, "emit signed values instead of clamping negatives to zero")
	stdoutFormat := flag.String("stdout", "", "stdout format: human or jsonl (empty disables stdout output)")
	sinkDBURL := flag.String("sink-db-url", "", "sink Postgres connection string")
	sinkStmt := flag.String("sink-stmt", "", "SQL statement template executed once per output row (see "+sink.SupportedPlaceholders+")")
	flag.Parse()

	runID := uuid.New().String()
	log.SetPrefix(fmt.Sprintf("[%s] ", runID))

	// stdlib log has no level concept; below "warn" every log.Printf is
	// diagnostic noise, so "off" and "error" just discard it. The final
	// error diagnostic goes to stderr directly and is never silenced.
	switch *logLevel {
	case "off", "error":
		log.SetOutput(io.Discard)
	case "warn", "info", "debug", "trace":
	default:
		fmt.Fprintln(os.Stderr, "stockgraph: -log-level must be one of off|error|warn|info|debug|trace")
		os.Exit(1)
	}

	// Optional convenience load; pool tuning can live in a .env next to
	// the binary instead of the shell environment.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	if err := run(runArgs{
		warehouseID:   *warehouse,
		products:      products.values,
		srcDBURL:      *srcDBURL,
		allowNegative: *allowNegative,
		stdoutFormat:  *stdoutFormat,
		sinkDBURL:     *sinkDBURL,
		sinkStmt:      *sinkStmt,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "stockgraph: %v\n", err)
		os.Exit(1)
	}
}

type runArgs struct {
	warehouseID   int
	products      []int32
	srcDBURL      string
	allowNegative bool
	stdoutFormat  string
	sinkDBURL     string
	sinkStmt      string
}

func run(args runArgs) error {
	if args.warehouseID == 0 {
		return &ConfigurationError{Reason: "-warehouse is required"}
	}
	if args.srcDBURL == "" {
		return &ConfigurationError{Reason: "-src-db-url is required"}
	}
	if args.stdoutFormat == "" && args.sinkStmt == "" {
		return &ConfigurationError{Reason: "at least one of -stdout or -sink-stmt is required"}
	}
	if args.stdoutFormat != "" && args.stdoutFormat != "human" && args.stdoutFormat != "jsonl" {
		return &ConfigurationError{Reason: "-stdout must be \"human\" or \"jsonl\""}
	}
	if (args.sinkDBURL == "") != (args.sinkStmt == "") {
		return &ConfigurationError{Reason: "-sink-db-url and -sink-stmt must both be set or both be empty"}
	}

	var tmpl sink.Template
	if args.sinkStmt != "" {
		var err error
		tmpl, err = sink.ParseTemplate(args.sinkStmt)
		if err != nil {
			return fmt.Errorf("parsing -sink-stmt: %w", err)
		}
	}

	cfg := config.Load()
	ctx := context.Background()

	srcDB, err := sql.Open("postgres", args.srcDBURL)
	if err != nil {
		return fmt.Errorf("opening source database: %w", err)
	}
	defer srcDB.Close()
	srcDB.SetMaxOpenConns(cfg.PoolMaxOpenConns)
	srcDB.SetConnMaxLifetime(cfg.PoolConnMaxLifetime)

	requested := make([]product.ID, len(args.products))
	for i, id := range args.products {
		requested[i] = product.ID(id)
	}

	result, err := pipeline.Run(ctx, srcDB, pipeline.Options{
		WarehouseID:       product.WarehouseID(args.warehouseID),
		RequestedProducts: requested,
	})
	if err != nil {
		return err
	}

	ids := requested
	if len(ids) == 0 {
		ids = result.ComputedOrder
	}

	outputMode := product.OutputModeFromAllowNegative(args.allowNegative)

	if args.stdoutFormat != "" {
		for _, id := range ids {
			availability, ok := result.Get(id)
			if !ok {
				return &MissingAvailabilityError{ProductID: id}
			}
			out := availability.Output(outputMode)
			switch args.stdoutFormat {
			case "human":
				if err := output.WriteHuman(os.Stdout, id, result.Warehouse, out); err != nil {
					return fmt.Errorf("writing stdout: %w", err)
				}
			case "jsonl":
				if err := output.WriteJSONL(os.Stdout, id, result.Warehouse, out); err != nil {
					return fmt.Errorf("writing stdout: %w", err)
				}
			}
		}
	}

	if args.sinkStmt != "" {
		sinkDB, err := sql.Open("postgres", args.sinkDBURL)
		if err != nil {
			return fmt.Errorf("opening sink database: %w", err)
		}
		defer sinkDB.Close()
		sinkDB.SetMaxOpenConns(cfg.PoolMaxOpenConns)
		sinkDB.SetConnMaxLifetime(cfg.PoolConnMaxLifetime)

		rows := make([]sink.Row, 0, len(ids))
		for _, id := range ids {
			availability, ok := result.Get(id)
			if !ok {
				return &MissingAvailabilityError{ProductID: id}
			}
			rows = append(rows, sink.Row{ProductID: id, Output: availability.Output(outputMode)})
		}

		if err := sink.Write(ctx, sinkDB, tmpl, result.Warehouse, rows); err != nil {
			return err
		}
	}

	return nil
}
