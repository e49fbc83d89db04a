//go:build windows && !dev

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/bartek5186/csvcatalog/internal/admin"
	"github.com/bartek5186/csvcatalog/internal/importer"
	"github.com/bartek5186/csvcatalog/internal/logs"
	"github.com/bartek5186/csvcatalog/internal/syncer"
	"github.com/getlantern/systray"
)

func main() {
	a, err := bootstrap(false)
	if err != nil {
		panic(err)
	}
	defer a.Close()
	log := a.log

	// kontekst sterujący życiem procesu (CTRL+C / zamknięcie sesji)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := syncer.New(log, a.cfg, a.imp)

	srv := admin.NewServer(log, a.imp, a.dbh.DB, a.cfg.Import)
	if a.cfg.Admin.Addr != "" {
		go func() {
			if err := srv.Start(a.cfg.Admin.Addr); err != nil {
				log.Error().Err(err).Msg("admin server")
			}
		}()
	}

	// jeśli proces dostanie sygnał – zatrzymaj syncer i zamknij tray
	go func() {
		<-ctx.Done()
		s.Stop()
		systray.Quit()
	}()

	systray.Run(func() {
		// onReady; ikona opcjonalna, leży obok configa
		if icon, err := os.ReadFile(filepath.Join(a.dir, "icon.ico")); err == nil {
			systray.SetIcon(icon)
		}
		systray.SetTooltip(fmt.Sprintf("CSV Catalog %s", ver))

		mImport := systray.AddMenuItem("Importuj katalog", "Uruchom import teraz")
		mStart := systray.AddMenuItem("Start harmonogramu", "Importuj co interwał")
		mStop := systray.AddMenuItem("Stop harmonogramu", "Zatrzymaj harmonogram")
		mStop.Disable()

		systray.AddSeparator()
		mOpenLogs := systray.AddMenuItem("Otwórz log importu", "Pokaż plik log")
		mOpenCfg := systray.AddMenuItem("Ustawienia (config.json)", "Otwórz plik konfiguracyjny")
		mReload := systray.AddMenuItem("Przeładuj konfigurację", "Wczytaj ponownie config.json")
		systray.AddSeparator()
		mAbout := systray.AddMenuItem(fmt.Sprintf("O programie (%s)", ver), "")
		mQuit := systray.AddMenuItem("Wyjście", "Zamknij aplikację")

		// AutoStart harmonogramu (nie mylić z autostartem Windows!)
		if a.cfg.AutoStart {
			if err := s.Start(ctx); err == nil {
				mStart.Disable()
				mStop.Enable()
				systray.SetTooltip(fmt.Sprintf("CSV Catalog %s — działa", ver))
			} else {
				log.Error().Msgf("AutoStart nieudany: %v", err)
			}
		}

		go func() {
			for {
				select {
				case <-mImport.ClickedCh:
					go func() {
						_ = logs.ResetFile(a.cfg.Import.LogFile)
						rep, err := a.imp.ImportDirectory(ctx, a.cfg.Import.CatalogDir)
						switch {
						case errors.Is(err, importer.ErrRunInProgress):
							systray.SetTooltip(fmt.Sprintf("CSV Catalog %s — import już trwa", ver))
						case err != nil:
							log.Error().Err(err).Msg("Import nieudany")
							systray.SetTooltip(fmt.Sprintf("CSV Catalog %s — błąd importu", ver))
						case !rep.Success():
							systray.SetTooltip(fmt.Sprintf("CSV Catalog %s — %d plik(ów) z błędem", ver, rep.FailedFiles))
						default:
							systray.SetTooltip(fmt.Sprintf("CSV Catalog %s — zaimportowano %d", ver, rep.Imported))
						}
					}()

				case <-mStart.ClickedCh:
					if err := s.Start(ctx); err != nil {
						log.Error().Msgf("Start error: %v", err)
						continue
					}
					mStart.Disable()
					mStop.Enable()
					systray.SetTooltip(fmt.Sprintf("CSV Catalog %s — działa", ver))

				case <-mStop.ClickedCh:
					s.Stop()
					mStop.Disable()
					mStart.Enable()
					systray.SetTooltip(fmt.Sprintf("CSV Catalog %s — zatrzymane", ver))

				case <-mOpenLogs.ClickedCh:
					openInExplorer(a.cfg.Import.LogFile)

				case <-mOpenCfg.ClickedCh:
					openInExplorer(a.cfgPath)

				case <-mReload.ClickedCh:
					cfg, err := a.reloadConfig()
					if err != nil {
						log.Error().Msgf("Błąd reloadu: %v", err)
						continue
					}
					s.UpdateConfig(cfg)
					log.Info().Msg("Konfiguracja przeładowana")

				case <-mAbout.ClickedCh:
					log.Info().Msgf("CSV Catalog %s | %s", ver, runtime.Version())

				case <-mQuit.ClickedCh:
					// łagodne zamykanie
					cancel()
					s.Stop()
					systray.Quit()
					return
				}
			}
		}()
	}, func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	})
}
