package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/insightdelivered/payments-engine/internal/api"
	"github.com/insightdelivered/payments-engine/internal/ledger"
	"github.com/insightdelivered/payments-engine/internal/reader"
	"github.com/insightdelivered/payments-engine/internal/writer"
)

const version = "1.0.0"

// Exit codes, one per failure class.
const (
	exitUsage  = 1
	exitIO     = 2
	exitFormat = 3
	exitLedger = 4
)

func main() {
	outputFlag := flag.String("output", "", "Output CSV file path (defaults to stdout)")
	debugFlag := flag.Bool("debug", false, "Log every processed transaction")
	serveFlag := flag.String("serve", "", "Run the HTTP API on this address instead of converting a file (e.g. :8080)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Payments Engine
by Insight Delivered

Replays a transaction log (deposits, withdrawals, disputes, resolves,
chargebacks) against per-client accounts and emits the final balances
as CSV.

Usage:
  payments-engine [flags] <transactions.csv|transactions.pdf>

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Replay a CSV transaction log to stdout
  payments-engine transactions.csv > accounts.csv

  # Replay a PDF table export into a file
  payments-engine --output=accounts.csv transactions.pdf

  # Serve the upload API
  payments-engine --serve=:8080

Exit codes:
  1  usage error
  2  I/O failure
  3  input format error
  4  transaction rejected by the ledger
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("payments-engine v%s\n", version)
		os.Exit(0)
	}

	log := newLogger(*debugFlag)
	defer log.Sync()

	if *serveFlag != "" {
		if err := runServer(*serveFlag, log); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(exitIO)
		}
		return
	}

	if *helpFlag {
		flag.Usage()
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(exitUsage)
	}

	inputPath := flag.Arg(0)
	if err := processFile(inputPath, *outputFlag, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
		os.Exit(exitCode(err))
	}
}

// processFile replays the transaction log at inputPath and writes the
// final account CSV to outputPath, or stdout when outputPath is empty.
// The run halts on the first error of any kind; nothing is exported then.
func processFile(inputPath, outputPath string, log *zap.Logger) error {
	src, cleanup, err := openSource(inputPath)
	if err != nil {
		return err
	}
	defer cleanup()

	led := ledger.New()
	processed := 0
	for {
		record, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		log.Debug("processing transaction",
			zap.String("kind", string(record.Kind)),
			zap.Uint16("client", record.Client),
			zap.Uint32("tx", record.Tx))
		if err := led.Apply(record); err != nil {
			return err
		}
		processed++
	}

	accounts := led.Export()
	log.Debug("replay finished",
		zap.Int("transactions", processed),
		zap.Int("accounts", len(accounts)))

	w := &writer.AccountWriter{}
	if outputPath == "" {
		return w.Write(os.Stdout, accounts)
	}
	return w.WriteToFile(outputPath, accounts)
}

// openSource picks the record source by file extension: .pdf goes through
// the PDF table extractor, everything else is read as delimited text.
func openSource(inputPath string) (reader.Source, func(), error) {
	if strings.ToLower(filepath.Ext(inputPath)) == ".pdf" {
		src, err := reader.OpenPDF(inputPath)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}

	src, err := reader.Open(inputPath)
	if err != nil {
		return nil, nil, err
	}
	return src, func() { src.Close() }, nil
}

func runServer(addr string, log *zap.Logger) error {
	app := fiber.New(fiber.Config{AppName: "payments-engine v" + version})
	h := &api.Handler{Log: log}
	h.RegisterRoutes(app)
	log.Info("serving payments API", zap.String("addr", addr))
	return app.Listen(addr)
}

// exitCode maps an error to the process exit code: format errors and
// ledger rejections get their own codes, everything else counts as I/O.
func exitCode(err error) int {
	switch {
	case errors.Is(err, reader.ErrFormat):
		return exitFormat
	case ledger.IsRejection(err):
		return exitLedger
	default:
		return exitIO
	}
}

// newLogger builds a stderr console logger; warnings and up by default,
// everything when debug is set.
func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
