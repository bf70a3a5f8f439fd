// auditctl runs the work-plan consistency audit out-of-band. Dry run
// by default; --fix applies repairs. Best-effort under live traffic:
// re-run until the dry-run issue count reaches zero.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"p9e.in/weibao/syncer"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		fix     bool
		jsonOut bool
		dsn     string
	)

	cmd := &cobra.Command{
		Use:   "auditctl",
		Short: "Detect and repair drift between order stores and the work-plan index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file found, using system environment variables")
			}
			if dsn == "" {
				dsn = os.Getenv("DB_DSN")
			}
			db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}

			report, err := syncer.NewAuditor(db).Audit(!fix)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "apply repairs instead of only reporting")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the full report as JSON")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database DSN (defaults to DB_DSN env)")
	return cmd
}

func printReport(cmd *cobra.Command, report *syncer.Report) {
	out := cmd.OutOrStdout()
	mode := "dry-run"
	if !report.DryRun {
		mode = "fix"
	}
	fmt.Fprintf(out, "Audit (%s) finished in %s\n\n", mode, report.FinishedAt.Sub(report.StartedAt))

	for _, tr := range report.Tables {
		fmt.Fprintf(out, "%-20s rows=%-6d missing=%-4d mismatch=%-4d orphan=%-4d fixed=%-4d errors=%d\n",
			tr.Source, tr.SourceRows, tr.MissingMirror, tr.FieldMismatch, tr.OrphanMirror, tr.Fixed, tr.Errors)
	}

	fmt.Fprintf(out, "\nRow counts:\n")
	for _, name := range []string{"inspection_orders", "repair_orders", "spot_work_orders", "maintenance_plans", "work_plans"} {
		fmt.Fprintf(out, "  %-20s %d\n", name, report.RowCounts[name])
	}
	fmt.Fprintf(out, "\nissues_found=%d issues_fixed=%d\n", report.IssuesFound, report.IssuesFixed)
}
