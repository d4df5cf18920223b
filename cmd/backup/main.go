package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"dadsadvice/internal/config"
	"dadsadvice/internal/database"
	"dadsadvice/internal/logger"
	"dadsadvice/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	err := run(cfg, log, os.Args[1], os.Args[2:])
	if errors.Is(err, errUsage) {
		printUsage()
	} else if err != nil {
		log.Error("Backup failed", zap.Error(err))
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func run(cfg *config.Config, log *zap.Logger, command string, args []string) error {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")
	importYes := importCmd.Bool("yes", false, "Skip the confirmation prompt of -clear")

	switch command {
	case "export":
		exportCmd.Parse(args)
	case "import":
		importCmd.Parse(args)
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			return errors.New("-input flag is required")
		}
	default:
		return errUsage
	}

	ctx := context.Background()

	// Initialize database
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	backupService := service.NewBackupService(db, log)

	if command == "export" {
		return handleExport(ctx, log, backupService, *exportOutput)
	}
	return handleImport(ctx, log, backupService, *importInput, *importClear, *importYes)
}

func handleExport(ctx context.Context, log *zap.Logger, backupService *service.BackupService, outputPath string) error {
	// Generate default filename if not provided
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	// Ensure directory exists
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if _, err := backupService.Export(ctx, file); err != nil {
		file.Close()
		return fmt.Errorf("export failed: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		log.Info("Export complete", zap.String("file", outputPath), zap.Int64("bytes", info.Size()))
	}
	return nil
}

func handleImport(ctx context.Context, log *zap.Logger, backupService *service.BackupService, inputPath string, clearData, skipPrompt bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file %s: %w", inputPath, err)
	}
	defer file.Close()

	if clearData && !skipPrompt {
		fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		confirmation, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(confirmation) != "yes" {
			log.Info("Import cancelled")
			return nil
		}
	}

	stats, err := backupService.Import(ctx, file, clearData)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	log.Info("Import complete",
		zap.Int("users", stats.UsersImported),
		zap.Int("advices", stats.AdvicesImported),
	)
	return nil
}

func printUsage() {
	fmt.Println("Dad's Advice Database Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export users and advices to a JSON file")
	fmt.Println("  backup import [options]    Import users and advices from a JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -clear            Clear existing data before import (WARNING: destructive)")
	fmt.Println("  -yes              Do not ask for confirmation with -clear")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./advice.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
}
