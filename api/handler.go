package api

import (
	"database/sql"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/rleiva87/candlesim/backtest"
	"github.com/rleiva87/candlesim/config"
	"github.com/rleiva87/candlesim/history"
	"github.com/rleiva87/candlesim/metrics"
	"github.com/rleiva87/candlesim/signal"
	"github.com/rleiva87/candlesim/storage"
)

type Handler struct {
	store *storage.Store
	cfg   *config.Config
}

func NewHandler(store *storage.Store, cfg *config.Config) *Handler {
	return &Handler{store: store, cfg: cfg}
}

// ListRuns returns the most recent stored runs.
func (h *Handler) ListRuns(c *gin.Context) {
	runs, err := h.store.ListRuns(c.Request.Context(), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(runs),
		"data":  runs,
	})
}

// GetRun returns one run with its trade ledger.
func (h *Handler) GetRun(c *gin.Context) {
	id := c.Param("id")

	run, err := h.store.GetRun(c.Request.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found", "id": id})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	trades, err := h.store.GetTrades(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run":    run,
		"trades": trades,
	})
}

type backtestRequest struct {
	CSV       string `json:"csv" binding:"required"`
	Symbol    string `json:"symbol"`
	Source    string `json:"source"`
	ModelPath string `json:"model_path"`
}

// RunBacktest simulates a CSV history with a named signal source, stores
// the run and returns its summary.
func (h *Handler) RunBacktest(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Symbol == "" {
		req.Symbol = h.cfg.Data.Symbol
	}
	if req.Source == "" {
		req.Source = h.cfg.Signal.Source
	}

	f, err := os.Open(req.CSV)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	series, err := history.ReadSeries(f, req.Symbol)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	hist, err := series.History()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	src, err := signal.NewSource(req.Source, req.ModelPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runner, err := backtest.NewRunner(h.cfg.BacktestOptions())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	res, err := runner.Run(c.Request.Context(), src, hist)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	sum := metrics.Summarize(res, h.cfg.Backtest.PeriodsPerYear)

	id, err := h.store.SaveRun(c.Request.Context(), req.Symbol, src.Name(), hist.Len(), res, sum)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      id,
		"symbol":  req.Symbol,
		"source":  src.Name(),
		"bars":    hist.Len(),
		"summary": sum,
	})
}
