// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	conf "github.com/bartek5186/csvcatalog/internal/config"
	"github.com/bartek5186/csvcatalog/internal/importer"
	"github.com/rs/zerolog"
)

// Runner – to, co syncer odpala co interwał (*importer.Importer).
type Runner interface {
	ImportDirectory(ctx context.Context, path string) (*importer.Report, error)
}

type Syncer struct {
	log     zerolog.Logger // logowanie
	runner  Runner         // import katalogu
	mu      sync.Mutex     // ochrona sekcji krytycznych
	cfg     *conf.Config   // aktualna konfiguracja
	running bool           // czy syncer działa
	cancel  context.CancelFunc
	wg      sync.WaitGroup // śledzi goroutines
	ticks   uint64         // licznik przebiegów
	last    *importer.Report
}

func New(log zerolog.Logger, cfg *conf.Config, runner Runner) *Syncer {
	return &Syncer{log: log.With().Str("component", "syncer").Logger(), cfg: cfg, runner: runner}
}

func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.ticks = 0
	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Info().Dur("interval", s.interval()).Msg("Syncer: start")
	go s.loop(ctx)
	return nil
}

func (s *Syncer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.log.Info().Msg("Syncer: stop")
}

func (s *Syncer) UpdateConfig(cfg *conf.Config) {
	s.mu.Lock()
	s.cfg = cfg
	isRunning := s.running
	s.mu.Unlock()

	s.log.Info().Msg("Syncer: config zaktualizowany")

	if isRunning {
		// restart, żeby pętla wzięła nowy katalog i interwał
		s.Stop()
		_ = s.Start(context.Background())
	}
}

func (s *Syncer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Ticks – liczba przebiegów od ostatniego Start.
func (s *Syncer) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// LastReport – raport ostatniego przebiegu uruchomionego przez syncer.
func (s *Syncer) LastReport() *importer.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Syncer) interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg != nil && s.cfg.SyncIntervalSeconds > 0 {
		return time.Duration(s.cfg.SyncIntervalSeconds) * time.Second
	}
	return time.Hour
}

func (s *Syncer) catalogDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return ""
	}
	return s.cfg.Import.CatalogDir
}

func (s *Syncer) loop(ctx context.Context) {
	defer s.wg.Done()

	// pierwszy strzał od razu
	s.tickOnce(ctx)

	cur := s.interval()
	ticker := time.NewTicker(cur)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Syncer: koniec pętli")
			return
		case <-ticker.C:
			// zmiana interwału w cfg: odśwież ticker
			if next := s.interval(); next != cur {
				cur = next
				ticker.Reset(cur)
			}
			s.tickOnce(ctx)
		}
	}
}

// tickOnce odpala import synchronicznie, więc przebiegi nie nakładają się.
func (s *Syncer) tickOnce(ctx context.Context) {
	s.mu.Lock()
	s.ticks++
	n := s.ticks
	s.mu.Unlock()

	dir := s.catalogDir()
	if dir == "" {
		s.log.Warn().Msg("Syncer: brak import.catalog_dir, pomijam")
		return
	}

	rep, err := s.runner.ImportDirectory(ctx, dir)
	switch {
	case errors.Is(err, importer.ErrRunInProgress):
		s.log.Warn().Uint64("tick", n).Msg("Syncer: import już trwa, pomijam")
		return
	case errors.Is(err, context.Canceled):
		// Stop w trakcie przebiegu
	case err != nil:
		s.log.Error().Err(err).Uint64("tick", n).Str("dir", dir).Msg("Syncer: import nieudany")
	}
	if rep == nil {
		return
	}

	s.mu.Lock()
	s.last = rep
	s.mu.Unlock()
	s.log.Info().Uint64("tick", n).Str("run_id", rep.RunID).Int("files", len(rep.Files)).
		Int("failed", rep.FailedFiles).Msg("Syncer: przebieg zakończony")
}
