package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"famlink/internal/config"
	"famlink/internal/database"
	"famlink/internal/logging"
	"famlink/internal/service"
)

func main() {
	logging.Setup()

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	premiumCmd := flag.NewFlagSet("premium", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")

	premiumEmail := premiumCmd.String("email", "", "Account email (required)")
	premiumRevoke := premiumCmd.Bool("revoke", false, "Remove premium instead of granting it")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		fatal("Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		fatal("Failed to run migrations", err)
	}

	ctx := context.Background()
	backupService := service.NewBackupService(db)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(ctx, backupService, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(ctx, backupService, db, *importInput, *importClear)

	case "premium":
		premiumCmd.Parse(os.Args[2:])
		if *premiumEmail == "" {
			fmt.Println("Error: -email flag is required")
			premiumCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := backupService.SetPremium(ctx, *premiumEmail, !*premiumRevoke); err != nil {
			fatal("Failed to update premium flag", err)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fatal("Failed to create output directory", err)
		}
	}

	slog.Info("Exporting database", "path", outputPath)
	if err := backupService.Export(ctx, outputPath); err != nil {
		fatal("Export failed", err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		slog.Info("Export complete", "size_mb", fmt.Sprintf("%.2f", float64(info.Size())/1024/1024))
	}
}

func handleImport(ctx context.Context, backupService *service.BackupService, db *database.DB, inputPath string, clearData bool) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		fatal("Input file does not exist", err)
	}

	if clearData {
		fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			slog.Info("Import cancelled")
			return
		}

		slog.Info("Clearing existing data...")
		if err := clearDatabase(ctx, db); err != nil {
			fatal("Failed to clear database", err)
		}
	}

	slog.Info("Importing database", "path", inputPath)
	if err := backupService.Import(ctx, inputPath); err != nil {
		fatal("Import failed", err)
	}
	slog.Info("Import complete")
}

func clearDatabase(ctx context.Context, db *database.DB) error {
	// Reverse dependency order
	tables := []string{
		"activities",
		"pending_changes",
		"notes",
		"child_members",
		"children",
		"account_pairs",
		"accounts",
	}

	return db.WithTx(ctx, func(tx *database.Tx) error {
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			slog.Info("Cleared table", "table", table)
		}
		return nil
	})
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Famlink Database Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [-output FILE]")
	fmt.Println("  backup import -input FILE [-clear]")
	fmt.Println("  backup premium -email EMAIL [-revoke]")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  backup export -output backups/famlink.json")
	fmt.Println("  backup import -input backups/famlink.json -clear")
	fmt.Println("  backup premium -email amina@example.com")
}
