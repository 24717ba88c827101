package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/batchlingo/internal/cli"
	"codeberg.org/snonux/batchlingo/internal/domain"
	"codeberg.org/snonux/batchlingo/internal/export"
	"codeberg.org/snonux/batchlingo/internal/orchestrator"
	"codeberg.org/snonux/batchlingo/internal/packaging"
	"codeberg.org/snonux/batchlingo/internal/retry"
	"codeberg.org/snonux/batchlingo/internal/store"
	"codeberg.org/snonux/batchlingo/internal/translate"
)

func main() {
	flags := cli.NewFlags()
	rootCmd := cli.CreateRootCommand(flags)

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	runCmd := &cobra.Command{
		Use:   "run <image>...",
		Short: "Translate a batch of images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(flags, args)
		},
	}
	cli.SetupRunFlags(runCmd, flags)

	statusCmd := &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show the progress of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return statusCommand(flags, args[0])
		},
	}

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List all sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionsCommand(flags)
		},
	}

	packageCmd := &cobra.Command{
		Use:   "package <session-id>",
		Short: "Package a session's translated images into a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return packageCommand(flags, args[0])
		},
	}
	packageCmd.Flags().StringVar(&flags.FileID, "file", "", "Package a single file record instead of the whole session")

	exportCmd := &cobra.Command{
		Use:   "export [session-id]",
		Short: "Export session records as a CSV report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := ""
			if len(args) > 0 {
				sessionID = args[0]
			}
			return exportCommand(flags, sessionID)
		},
	}
	exportCmd.Flags().StringVar(&flags.CSVPath, "csv", "", "CSV output path (default usage_logs_<timestamp>.csv)")

	rootCmd.AddCommand(runCmd, statusCmd, sessionsCmd, packageCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openStore(flags *cli.Flags) (store.Store, error) {
	dbPath := viper.GetString("store.db_path")
	if dbPath == "" {
		dbPath = flags.DBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return store.NewSQLiteStore(dbPath)
}

func buildProvider(flags *cli.Flags) (translate.Provider, error) {
	config := &translate.Config{
		Provider:    flags.Provider,
		GeminiKey:   cli.GetGeminiKey(),
		GeminiModel: flags.GeminiModel,
		OpenAIKey:   cli.GetOpenAIKey(),
		OpenAIModel: flags.OpenAIModel,
		OpenAISize:  flags.OpenAISize,
	}

	provider, err := translate.NewProvider(config)
	if err != nil {
		return nil, err
	}
	return translate.NewBreakerProvider(provider), nil
}

func runCommand(flags *cli.Flags, inputs []string) error {
	if !translate.IsSupportedLanguage(flags.TargetLanguage) {
		return fmt.Errorf("unsupported target language: %s", flags.TargetLanguage)
	}

	provider, err := buildProvider(flags)
	if err != nil {
		return err
	}

	s, err := openStore(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	policy := &retry.Policy{
		MaxAttempts: flags.MaxAttempts,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
	orch := orchestrator.New(s, provider, policy, &orchestrator.Config{
		OutputDir:   flags.OutputDir,
		Concurrency: flags.Concurrency,
		CallTimeout: flags.CallTimeout,
	})

	session, err := orch.CreateSession(inputs, flags.TargetLanguage, translate.PromptVersion)
	if err != nil {
		return err
	}

	// Unreadable inputs are skipped at session creation, so count the
	// records actually enqueued rather than the arguments given.
	created, err := orch.Status(session.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Session %s: translating %d image(s) to %s...\n",
		session.ID, len(created.Records), flags.TargetLanguage)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshot, err := orch.Run(ctx, session.ID)
	if err != nil {
		return err
	}

	printSummary(snapshot)
	return nil
}

func statusCommand(flags *cli.Flags, sessionID string) error {
	s, err := openStore(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	session, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}
	records, err := s.ListFileRecords(sessionID)
	if err != nil {
		return err
	}

	printSummary(&orchestrator.Snapshot{Session: session, Records: records})
	return nil
}

func sessionsCommand(flags *cli.Flags) error {
	s, err := openStore(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	sessions, err := s.ListSessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions yet.")
		return nil
	}

	for _, session := range sessions {
		records, err := s.ListFileRecords(session.ID)
		if err != nil {
			return err
		}
		counts := domain.CountByStatus(records)
		fmt.Printf("%s  %s  %-22s %-21s %d file(s), %d ok, %d failed\n",
			session.ID,
			session.CreatedAt.Format("2006-01-02 15:04:05"),
			session.Status,
			session.TargetLanguage,
			len(records),
			counts[domain.FileSuccess],
			counts[domain.FileFailed],
		)
	}
	return nil
}

func packageCommand(flags *cli.Flags, sessionID string) error {
	s, err := openStore(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	svc := packaging.NewService(s)

	if flags.FileID != "" {
		path, err := svc.PackageSingle(sessionID, flags.FileID)
		if err != nil {
			return err
		}
		fmt.Printf("Output: %s\n", path)
		return nil
	}

	archivePath := filepath.Join(flags.OutputDir, sessionID, "translated_images.zip")
	path, err := svc.PackageAll(sessionID, archivePath)
	if err != nil {
		return err
	}
	fmt.Printf("Archive created: %s\n", path)
	return nil
}

func exportCommand(flags *cli.Flags, sessionID string) error {
	s, err := openStore(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	csvPath := flags.CSVPath
	if csvPath == "" {
		csvPath = fmt.Sprintf("usage_logs_%s.csv", time.Now().Format("20060102_150405"))
	}

	svc := export.NewService(s)
	if sessionID != "" {
		err = svc.ExportSessionToFile(sessionID, csvPath)
	} else {
		err = svc.ExportAllToFile(csvPath)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Report written: %s\n", csvPath)
	return nil
}

func printSummary(snapshot *orchestrator.Snapshot) {
	fmt.Printf("\nSession %s (%s, %s)\n",
		snapshot.Session.ID, snapshot.Session.TargetLanguage, snapshot.Session.Status)

	for _, r := range snapshot.Records {
		switch r.Status {
		case domain.FileSuccess:
			fmt.Printf("  ✓ %s -> %s (%d attempt(s), %dms)\n",
				r.SourceFilename, r.OutputRef, r.AttemptCount, r.DurationMS)
		case domain.FileFailed:
			fmt.Printf("  ✗ %s: %s [%s] (%d attempt(s))\n",
				r.SourceFilename, r.ErrorMessage, r.ErrorKind, r.AttemptCount)
		default:
			fmt.Printf("  … %s: %s\n", r.SourceFilename, r.Status)
		}
	}

	counts := domain.CountByStatus(snapshot.Records)
	fmt.Printf("\n%d file(s): %d translated, %d failed\n",
		len(snapshot.Records), counts[domain.FileSuccess], counts[domain.FileFailed])
}
