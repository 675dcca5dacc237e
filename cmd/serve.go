package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/biotrust-cli/internal/credibility"
	"github.com/sells-group/biotrust-cli/internal/fda"
	"github.com/sells-group/biotrust-cli/internal/model"
	"github.com/sells-group/biotrust-cli/internal/textsignal"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tracker and analyzer over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/extract", handleExtract(env))
		r.Get("/promises/due", handleDue(env))
		r.Post("/promises/{id}/outcome", handleOutcome(env))
		r.Get("/credibility/executive", handleExecutiveCredibility(env))
		r.Get("/credibility/company/{name}", handleCompanyCredibility(env))
		r.Post("/fda/analyze", handleAnalyze(env))
		r.Post("/fda/precedents", handlePrecedents(env))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func handleExtract(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text          string `json:"text"`
			Company       string `json:"company"`
			ExecutiveName string `json:"executive_name"`
			Title         string `json:"executive_title"`
			Source        string `json:"source"`
			Date          string `json:"date"`
			Save          bool   `json:"save"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Text == "" || req.Company == "" || req.ExecutiveName == "" {
			writeError(w, http.StatusBadRequest, "text, company, and executive_name are required")
			return
		}

		dateMade := time.Now().UTC()
		if req.Date != "" {
			parsed, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
				return
			}
			dateMade = parsed
		}

		promises := textsignal.ExtractPromises(req.Text, req.Company,
			req.ExecutiveName, req.Title, req.Source, dateMade)

		if req.Save && len(promises) > 0 {
			if _, err := env.Tracker.Record(r.Context(), promises); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, promises)
	}
}

func handleDue(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := 30
		if raw := r.URL.Query().Get("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "days must be an integer")
				return
			}
			days = parsed
		}

		due, err := env.Tracker.DueWithin(r.Context(), days)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, due)
	}
}

func handleOutcome(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status  string `json:"status"`
			Date    string `json:"date"`
			Details string `json:"details"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		status, err := model.ParsePromiseStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		when := time.Now().UTC()
		if req.Date != "" {
			if when, err = time.Parse("2006-01-02", req.Date); err != nil {
				writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
				return
			}
		}

		updated, err := env.Tracker.UpdateOutcome(r.Context(), chi.URLParam(r, "id"), status, when, req.Details)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func handleExecutiveCredibility(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		company := r.URL.Query().Get("company")

		promises, err := env.Promises.ListByExecutive(r.Context(), name, company)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		// An unknown executive gets a well-formed zero-count summary.
		if len(promises) > 0 {
			company = promises[0].Company
		}
		writeJSON(w, http.StatusOK, credibility.ComputeExecutive(name, company, promises))
	}
}

func handleCompanyCredibility(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		promises, err := env.Promises.ListByCompany(r.Context(), name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, credibility.ComputeCompany(name, promises))
	}
}

func decodeSubmission(r *http.Request) (model.Submission, error) {
	var sub model.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		return sub, eris.New("invalid request body")
	}
	if sub.Company == "" || sub.DrugName == "" {
		return sub, eris.New("company and drug_name are required")
	}
	if _, err := model.ParseDrugType(string(sub.DrugType)); err != nil {
		return sub, err
	}
	if _, err := model.ParseReviewDivision(string(sub.ReviewDivision)); err != nil {
		return sub, err
	}
	if sub.ReviewPathway == "" {
		sub.ReviewPathway = model.PathwayStandard
	}
	sub.EnsureID()
	return sub, nil
}

func handleAnalyze(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := decodeSubmission(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		analysis, err := env.Analyzer.Analyze(r.Context(), sub)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, analysis)
	}
}

func handlePrecedents(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := decodeSubmission(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		precedents, err := fda.FindPrecedents(r.Context(), env.FDA, sub)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, precedents)
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
