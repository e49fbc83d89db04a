// Package admin wystawia akcje administracyjne importu przez HTTP.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	conf "github.com/bartek5186/csvcatalog/internal/config"
	"github.com/bartek5186/csvcatalog/internal/importer"
	"github.com/bartek5186/csvcatalog/internal/logs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// LogFileName – nazwa pobieranego logu ostatniego importu.
const LogFileName = "csv-import-log.txt"

type Importer interface {
	ImportDirectory(ctx context.Context, path string) (*importer.Report, error)
}

type Server struct {
	log    zerolog.Logger
	imp    Importer
	db     *gorm.DB
	cfg    conf.ImportConfig
	router *chi.Mux
	server *http.Server
}

func NewServer(log zerolog.Logger, imp Importer, gdb *gorm.DB, cfg conf.ImportConfig) *Server {
	s := &Server{
		log:    log.With().Str("component", "admin").Logger(),
		imp:    imp,
		db:     gdb,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.accessLog)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/admin/catalog", func(r chi.Router) {
		r.Post("/import", s.handleImport)
		r.Get("/log", s.handleLog)
		r.Get("/status", s.handleStatus)
	})
	return s
}

// Router – dla testów.
func (s *Server) Router() *chi.Mux { return s.router }

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("admin server listening")
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handleImport czyści log i importuje stały katalog z konfiguracji.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	dir := s.cfg.CatalogDir
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		writeError(w, http.StatusNotFound, fmt.Sprintf("catalog directory %s does not exist", dir))
		return
	}
	if err := logs.ResetFile(s.cfg.LogFile); err != nil {
		s.log.Warn().Err(err).Str("file", s.cfg.LogFile).Msg("cannot reset import log")
	}

	// import kończy się nawet gdy klient się rozłączy
	rep, err := s.imp.ImportDirectory(context.WithoutCancel(r.Context()), dir)
	switch {
	case errors.Is(err, importer.ErrRunInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.log.Error().Err(err).Str("dir", dir).Msg("admin import failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": rep.Success(),
		"report":  rep,
	})
}

// handleLog zwraca końcówkę logu jako załącznik tekstowy.
func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	data, err := logs.Tail(s.cfg.LogFile, logs.DefaultTailBytes)
	if err != nil {
		s.log.Error().Err(err).Str("file", s.cfg.LogFile).Msg("cannot read import log")
		writeError(w, http.StatusInternalServerError, "cannot read import log")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", LogFileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rep, err := importer.LastReport(s.db)
	if err != nil {
		s.log.Error().Err(err).Msg("cannot load last run")
		writeError(w, http.StatusInternalServerError, "cannot load last run")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"last_run": rep})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http")
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
