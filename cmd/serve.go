package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/discovery"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

const shutdownTimeout = 30 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server that triggers search runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		env, err := initPipeline(ctx, config.ModeServe)
		if err != nil {
			return err
		}
		defer env.Close()

		srv := newRunServer(ctx, env.Store, func(ctx context.Context, runID string, c model.SearchCriteria, num int) (*model.Report, error) {
			return executeRun(ctx, env.Store, env.Archiver, runID, func(ctx context.Context) (*model.Report, error) {
				return env.Pipeline.RunSearch(ctx, runID, c, num)
			})
		})
		srv.maxResults = cfg.SerpAPI.MaxResults

		return serve(ctx, fmt.Sprintf(":%d", cfg.Server.Port), srv)
	},
}

// serve runs the HTTP server until ctx is done, then shuts it down and
// waits for in-flight runs.
func serve(ctx context.Context, addr string, rs *runServer) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           rs.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("starting server", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server shutdown")
		}
		rs.wait()
		return nil
	})
	return g.Wait()
}

// runFunc executes a search run that has already been created in the store.
type runFunc func(ctx context.Context, runID string, c model.SearchCriteria, maxResults int) (*model.Report, error)

// runServer exposes run creation and inspection over HTTP. Runs execute in
// the background under the server's base context.
type runServer struct {
	ctx        context.Context
	store      store.Store
	run        runFunc
	maxResults int
	inflight   sync.WaitGroup
}

func newRunServer(ctx context.Context, st store.Store, run runFunc) *runServer {
	return &runServer{ctx: ctx, store: st, run: run, maxResults: 10}
}

func (s *runServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.handleListRuns)
		r.Post("/", s.handleCreateRun)
		r.Get("/{id}", s.handleGetRun)
	})
	return r
}

// wait blocks until every background run has finished.
func (s *runServer) wait() {
	s.inflight.Wait()
}

type createRunRequest struct {
	Keyword           string `json:"keyword"`
	Website           string `json:"website"`
	Location          string `json:"location"`
	Position          string `json:"position"`
	IncludeEmailHints bool   `json:"include_email_hints"`
	IncludePhoneHints bool   `json:"include_phone_hints"`
	Num               int    `json:"num"`
}

func (req createRunRequest) criteria() model.SearchCriteria {
	return model.SearchCriteria{
		Keyword:           req.Keyword,
		Website:           req.Website,
		Location:          req.Location,
		Position:          req.Position,
		IncludeEmailHints: req.IncludeEmailHints,
		IncludePhoneHints: req.IncludePhoneHints,
	}
}

func (s *runServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *runServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := req.criteria()
	if q, _ := discovery.BuildQuery(c); q == "" {
		writeError(w, http.StatusBadRequest, "search criteria produce an empty query")
		return
	}
	num := req.Num
	if num <= 0 {
		num = s.maxResults
	}

	run, err := s.store.CreateRun(r.Context(), model.RunSourceSearch, &c)
	if err != nil {
		zap.L().Error("create run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create run")
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if _, err := s.run(s.ctx, run.ID, c, num); err != nil {
			zap.L().Error("background run failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"run_id": run.ID,
		"status": string(run.Status),
	})
}

func (s *runServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		zap.L().Error("get run failed", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *runServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{
		Status: model.RunStatus(q.Get("status")),
		Source: model.RunSource(q.Get("source")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list runs")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
