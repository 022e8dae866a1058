// seed_modules carga el catálogo de módulos (tiers, precios y submódulos).
//
// Uso:
//
//	go run ./cmd/seed_modules                       # catálogo por defecto sobre DATABASE_URL/DB_*
//	go run ./cmd/seed_modules --dsn postgres://...  # DSN explícito
//	go run ./cmd/seed_modules --file catalogo.csv --charset iso-8859-1
//	go run ./cmd/seed_modules --dry-run             # store en memoria, no toca PostgreSQL
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/backoffice-api/pkg/config"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

type options struct {
	dsn     string
	file    string
	charset string
	dryRun  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "seed_modules",
		Short: "Carga el catálogo de módulos",
		Long: `Inserta o actualiza los módulos del catálogo y sus submódulos.

Los IDs se derivan del nombre del módulo, así que correrlo varias veces
actualiza precios y submódulos sin duplicar filas.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "connection string PostgreSQL (por defecto DATABASE_URL/DB_*)")
	cmd.Flags().StringVar(&opts.file, "file", "", "CSV del catálogo: nombre;tier;precio;sub1|sub2")
	cmd.Flags().StringVar(&opts.charset, "charset", "utf-8", "codificación del CSV (utf-8, iso-8859-1, windows-1252)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "sembrar en memoria e imprimir el resultado")
	return cmd
}

func run(ctx context.Context, opts options, out io.Writer) error {
	entries, err := loadEntries(opts)
	if err != nil {
		return err
	}

	if opts.dryRun {
		store := memory.New()
		return seed(ctx, store.Modules(), entries, out)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	if opts.dsn != "" {
		cfg.DB.DatabaseURL = opts.dsn
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	if _, err := postgres.Migrate(ctx, pool, log); err != nil {
		return fmt.Errorf("migraciones: %w", err)
	}
	return seed(ctx, postgres.NewModuleRepository(pool), entries, out)
}

func loadEntries(opts options) ([]usecase.CatalogEntry, error) {
	if opts.file == "" {
		return usecase.DefaultCatalog(), nil
	}
	f, err := os.Open(opts.file)
	if err != nil {
		return nil, fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()
	return usecase.ParseCatalogCSV(f, opts.charset)
}

func seed(ctx context.Context, repo repository.ModuleRepository, entries []usecase.CatalogEntry, out io.Writer) error {
	modules, err := usecase.NewCatalogSeeder(repo, nil).Seed(ctx, entries)
	if err != nil {
		return err
	}
	printModules(out, modules)
	return nil
}

func printModules(out io.Writer, modules []*entity.Module) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOMBRE\tTIER\tPRECIO")
	for _, m := range modules {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Type, m.Price.StringFixed(2))
	}
	_ = w.Flush()
}
