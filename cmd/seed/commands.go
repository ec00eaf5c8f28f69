package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/logger"
	"github.com/atinyakov/schemeseva/internal/models"
	"github.com/atinyakov/schemeseva/internal/repository"
	"github.com/atinyakov/schemeseva/internal/seed"
)

// opener opens the database for a DSN.
type opener func(dsn string) (*sql.DB, error)

type rootFlags struct {
	dsn      string
	logLevel string
	timeout  time.Duration
}

func newRootCmd(open opener) *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Seed and migrate the SchemeSeva scheme catalogue",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&f.dsn, "dsn", "d", os.Getenv("DATABASE_DSN"), "PostgreSQL DSN (or set DATABASE_DSN)")
	root.PersistentFlags().StringVarP(&f.logLevel, "log-level", "l", "info", "log level")
	root.PersistentFlags().DurationVar(&f.timeout, "timeout", time.Minute, "operation timeout")

	root.AddCommand(newRunCmd(f, open), newMigrateCmd(f, open), newCountCmd(f, open))
	return root
}

func newRunCmd(f *rootFlags, open opener) *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Delete every scheme and insert the seed set",
		Long: `Replace the contents of the schemes table with the seed set in one
transaction. Running it twice leaves exactly the seeded rows.

Without --file the embedded catalogue is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemes, err := loadSchemes(file)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d schemes parsed, nothing written\n", len(schemes))
				return nil
			}
			return withSeeder(cmd, f, open, func(ctx context.Context, s *seed.Seeder) error {
				if err := s.Run(ctx, schemes); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully inserted %d schemes\n", len(schemes))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file (default: embedded catalogue)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate only")
	return cmd
}

func newMigrateCmd(f *rootFlags, open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite short or legacy category values to canonical labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSeeder(cmd, f, open, func(ctx context.Context, s *seed.Seeder) error {
				n, err := s.Migrate(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d rows migrated\n", n)
				return nil
			})
		},
	}
}

func newCountCmd(f *rootFlags, open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of schemes per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSeeder(cmd, f, open, func(ctx context.Context, s *seed.Seeder) error {
				counts, err := s.Counts(ctx)
				if err != nil {
					return err
				}
				printCounts(cmd, counts)
				return nil
			})
		},
	}
}

// printCounts lists the known categories first, then any unrecognised values.
func printCounts(cmd *cobra.Command, counts map[string]int) {
	out := cmd.OutOrStdout()
	total := 0
	known := map[string]bool{}
	for _, c := range models.Categories() {
		known[c.Label()] = true
		fmt.Fprintf(out, "%-45s %d\n", c.Label(), counts[c.Label()])
		total += counts[c.Label()]
	}
	var other []string
	for label := range counts {
		if !known[label] {
			other = append(other, label)
		}
	}
	sort.Strings(other)
	for _, label := range other {
		fmt.Fprintf(out, "%-45s %d\n", label, counts[label])
		total += counts[label]
	}
	fmt.Fprintf(out, "%-45s %d\n", "Total", total)
}

func loadSchemes(file string) ([]models.Scheme, error) {
	if file == "" {
		return seed.Default()
	}
	fh, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer fh.Close()
	return seed.Load(fh)
}

func withSeeder(cmd *cobra.Command, f *rootFlags, open opener, fn func(context.Context, *seed.Seeder) error) error {
	if f.dsn == "" {
		return fmt.Errorf("no database configured: pass --dsn or set DATABASE_DSN")
	}

	lg := logger.New()
	if err := lg.Init(f.logLevel); err != nil {
		return err
	}
	defer func() { _ = lg.Log.Sync() }()

	conn, err := open(f.dsn)
	if err != nil {
		lg.Log.Error("cannot init database", zap.Error(err))
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	defer cancel()

	s := &seed.Seeder{Store: repository.NewPostgresSchemeRepository(conn), Log: lg.Log}
	return fn(ctx, s)
}
