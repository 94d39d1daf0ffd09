package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"mietwerk/internal/domain/banking"
	"mietwerk/internal/domain/matchrule"
	"mietwerk/internal/infrastructure/postgres"
	"mietwerk/internal/shared/config"
)

const usage = `Mietwerk Admin CLI - Management commands for the Mietwerk API

Usage:
  admin <command> [options]

Commands:
  auto-match            Apply the active matching rules to unmatched bank transactions
  import-transactions   Import bank transactions from a CSV export

Examples:
  # Run auto-matching for a specific organization
  admin auto-match --org-id=1

  # Run auto-matching for multiple organizations
  admin auto-match --org-id=1,2,3

  # Run auto-matching for every organization that has rules
  admin auto-match --all

  # Run with timeout
  admin auto-match --org-id=1 --timeout=5m

  # Import a bank CSV export for an organization
  admin import-transactions --org-id=1 --file=umsaetze.csv
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "auto-match":
		runAutoMatch(os.Args[2:])
	case "import-transactions":
		runImportTransactions(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runAutoMatch(args []string) {
	fs := flag.NewFlagSet("auto-match", flag.ExitOnError)

	orgIDStr := fs.String("org-id", "", "Organization ID(s) to process (comma-separated for multiple)")
	allOrgs := fs.Bool("all", false, "Process every organization that has rules")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin auto-match [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin auto-match --org-id=1")
		fmt.Println("  admin auto-match --org-id=1,2,3")
		fmt.Println("  admin auto-match --all --timeout=1h")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *orgIDStr == "" && !*allOrgs {
		fmt.Println("Error: must specify --org-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	db, matchService, ruleRepo := connect()
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var orgIDs []int64
	if *allOrgs {
		orgIDs, err = ruleRepo.ListOrgIDs(ctx)
		if err != nil {
			log.Fatalf("Failed to list organizations: %v", err)
		}
		log.Printf("Found %d organization(s) with rules", len(orgIDs))
	} else {
		orgIDs, err = parseOrgIDs(*orgIDStr)
		if err != nil {
			log.Fatal(err)
		}
	}

	if len(orgIDs) == 0 {
		log.Println("No organizations to process")
		return
	}

	log.Printf("Starting auto-match for %d organization(s)", len(orgIDs))
	startTime := time.Now()

	for _, orgID := range orgIDs {
		result, err := matchService.AutoMatchAll(ctx, orgID)
		if err != nil {
			log.Fatalf("Auto-match failed for org %d: %v", orgID, err)
		}
		printAutoMatchResult(orgID, result)
	}

	log.Printf("Auto-match completed in %v", time.Since(startTime))
}

func printAutoMatchResult(orgID int64, result *matchrule.ApplyResult) {
	fmt.Printf("\n=== Organization %d ===\n", orgID)
	fmt.Printf("  Transactions matched: %d\n", result.Applied)
	fmt.Printf("  Skipped:              %d\n", result.Skipped)
	fmt.Printf("  Failed:               %d\n", result.Failed)
}

// csvColumns is the expected header of a bank CSV export.
var csvColumns = []string{"booking_date", "amount_cents", "counterpart_name", "counterpart_iban", "purpose", "booking_text"}

func runImportTransactions(args []string) {
	fs := flag.NewFlagSet("import-transactions", flag.ExitOnError)

	orgID := fs.Int64("org-id", 0, "Organization ID to import into")
	filePath := fs.String("file", "", "Path to the CSV export")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin import-transactions [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Printf("\nExpected CSV header: %s\n", strings.Join(csvColumns, ","))
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *orgID == 0 || *filePath == "" {
		fmt.Println("Error: must specify --org-id and --file")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	db, _, _ := connect()
	defer db.Close()
	transactionRepo := postgres.NewBankTransactionRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Printf("Importing transactions for org %d from %s", *orgID, *filePath)
	startTime := time.Now()

	imported, failed, err := importCSV(ctx, transactionRepo, *orgID, file)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Printf("\n=== Organization %d ===\n", *orgID)
	fmt.Printf("  Transactions imported: %d\n", imported)
	fmt.Printf("  Rows failed:           %d\n", failed)
	log.Printf("Import completed in %v", time.Since(startTime))
}

// importCSV reads bank movements from r and creates one unmatched
// transaction per row. Row-level errors are counted, not fatal.
func importCSV(ctx context.Context, repo banking.Repository, orgID int64, r io.Reader) (imported, failed int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvColumns)

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, col := range csvColumns {
		if strings.TrimSpace(strings.ToLower(header[i])) != col {
			return 0, 0, fmt.Errorf("unexpected CSV header %q, want %q", header[i], col)
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("Line %d: invalid row: %v", line, err)
			failed++
			continue
		}

		params, err := parseCSVRow(record, orgID)
		if err != nil {
			log.Printf("Line %d: %v", line, err)
			failed++
			continue
		}

		if _, err := repo.Create(ctx, params); err != nil {
			log.Printf("Line %d: failed to create transaction: %v", line, err)
			failed++
			continue
		}
		imported++
	}

	return imported, failed, nil
}

func parseCSVRow(record []string, orgID int64) (banking.CreateTransactionParams, error) {
	bookingDate, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
	if err != nil {
		return banking.CreateTransactionParams{}, fmt.Errorf("invalid booking_date %q: %w", record[0], err)
	}

	amountCents, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
	if err != nil {
		return banking.CreateTransactionParams{}, fmt.Errorf("invalid amount_cents %q: %w", record[1], err)
	}

	return banking.CreateTransactionParams{
		ID:              uuid.New().String(),
		OrgID:           orgID,
		BookingDate:     bookingDate,
		AmountCents:     amountCents,
		CounterpartName: optionalField(record[2]),
		CounterpartIBAN: optionalField(record[3]),
		Purpose:         optionalField(record[4]),
		BookingText:     optionalField(record[5]),
	}, nil
}

func optionalField(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseOrgIDs(s string) ([]int64, error) {
	var orgIDs []int64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid org ID %q: %w", p, err)
		}
		orgIDs = append(orgIDs, id)
	}
	return orgIDs, nil
}

func connect() (*postgres.DB, *matchrule.Service, *postgres.TransactionRuleRepository) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	transactionRepo := postgres.NewBankTransactionRepository(db)
	ruleRepo := postgres.NewTransactionRuleRepository(db)
	matchService := matchrule.NewService(ruleRepo, transactionRepo)

	return db, matchService, ruleRepo
}
