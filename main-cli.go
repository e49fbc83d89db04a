//go:build !windows || dev

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bartek5186/csvcatalog/internal/admin"
	"github.com/bartek5186/csvcatalog/internal/importer"
	"github.com/bartek5186/csvcatalog/internal/logs"
	"github.com/bartek5186/csvcatalog/internal/syncer"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Import katalogu produktów z plików CSV",
		Version:      ver,
		SilenceUsage: true,
	}
	root.AddCommand(importCommand(), serveCommand(), watchCommand(), logCommand(), statusCommand())
	return root
}

func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return fn(ctx, a, args)
	}
}

func importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [path]",
		Short: "Importuje katalog (albo pojedynczy plik) CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			path := a.cfg.Import.CatalogDir
			if len(args) == 1 {
				path = args[0]
			}
			rep, err := a.imp.ImportDirectory(ctx, path)
			if rep != nil {
				printReport(rep)
			}
			if err != nil {
				return err
			}
			if !rep.Success() {
				return fmt.Errorf("%d file(s) failed", rep.FailedFiles)
			}
			return nil
		}),
	}
}

func serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Uruchamia panel administracyjny HTTP (i harmonogram przy auto_start)",
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if addr == "" {
				addr = a.cfg.Admin.Addr
			}
			srv := admin.NewServer(a.log, a.imp, a.dbh.DB, a.cfg.Import)

			s := syncer.New(a.log, a.cfg, a.imp)
			if a.cfg.AutoStart {
				if err := s.Start(ctx); err != nil {
					a.log.Error().Msgf("AutoStart nieudany: %v", err)
				}
			}
			defer s.Stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "adres nasłuchu (domyślnie admin.addr z configa)")
	return cmd
}

func watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Importuje katalog co sync_interval_seconds aż do przerwania",
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			s := syncer.New(a.log, a.cfg, a.imp)
			if err := s.Start(ctx); err != nil {
				return err
			}
			fmt.Printf("CSV catalog %s — harmonogram działa, CTRL+C kończy\n", ver)
			<-ctx.Done()
			s.Stop()
			return nil
		}),
	}
}

func logCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Wypisuje końcówkę logu ostatniego importu",
		RunE: withApp(func(_ context.Context, a *app, _ []string) error {
			data, err := logs.Tail(a.cfg.Import.LogFile, logs.DefaultTailBytes)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		}),
	}
}

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Pokazuje podsumowanie ostatniego przebiegu",
		RunE: withApp(func(_ context.Context, a *app, _ []string) error {
			rep, err := importer.LastReport(a.dbh.DB)
			if err != nil {
				return err
			}
			if rep == nil {
				fmt.Println("Brak zapisanego przebiegu")
				return nil
			}
			printReport(rep)
			return nil
		}),
	}
}

func printReport(rep *importer.Report) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(rep)
}
