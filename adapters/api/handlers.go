package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/fredricj/SingleCellProteogenomics/domain/core"
	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
)

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := a.repo.ListRuns(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, runs)
}

func (a *App) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := a.runID(w, r)
	if !ok {
		return
	}
	run, err := a.repo.GetRun(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, run)
}

// handleRunReport renders the run's figures of merit as HTML
func (a *App) handleRunReport(w http.ResponseWriter, r *http.Request) {
	id, ok := a.runID(w, r)
	if !ok {
		return
	}
	run, err := a.repo.GetRun(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	body := markdown.ToHTML([]byte(run.FiguresOfMerit), p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>Run %s</title></head><body>%s</body></html>", run.ID, body)
}

func (a *App) handleGeneResults(w http.ResponseWriter, r *http.Request) {
	id, ok := a.runID(w, r)
	if !ok {
		return
	}
	rows, err := a.repo.GeneResults(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, rows)
}

func (a *App) handleProteinResults(w http.ResponseWriter, r *http.Request) {
	id, ok := a.runID(w, r)
	if !ok {
		return
	}
	rows, err := a.repo.ProteinResults(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, rows)
}

func (a *App) handleStabilityComparisons(w http.ResponseWriter, r *http.Request) {
	id, ok := a.runID(w, r)
	if !ok {
		return
	}
	rows, err := a.repo.StabilityComparisons(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, rows)
}

func (a *App) runID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return "", false
	}
	return id.String(), true
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("encoding response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.GetCode(err) == errors.CodeNotFound {
		status = http.StatusNotFound
	}
	a.logger.Error("request failed: %v", err)
	a.writeJSON(w, status, map[string]string{"error": err.Error()})
}
