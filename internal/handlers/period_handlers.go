package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/banner-auction/internal/models"
	"github.com/senyabanana/banner-auction/internal/services"
	"github.com/senyabanana/banner-auction/internal/utils"
)

// PeriodHandler - структура для обработки HTTP-запросов по аукционным периодам.
type PeriodHandler struct {
	Periods *services.PeriodService
	Sweeper *services.SweepService
	Closer  *services.CloserService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewPeriodHandler создает новый экземпляр PeriodHandler.
func NewPeriodHandler(periods *services.PeriodService, sweeper *services.SweepService, closer *services.CloserService, logger *log.Logger, timeout time.Duration) *PeriodHandler {
	return &PeriodHandler{
		Periods: periods,
		Sweeper: sweeper,
		Closer:  closer,
		Logger:  logger,
		Timeout: timeout,
	}
}

// OpenPeriod обрабатывает запросы на открытие нового периода.
func (h *PeriodHandler) OpenPeriod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	period, err := h.Periods.Open(ctx)
	if err != nil {
		h.respondError(w, err, "failed to open bidding period")
		return
	}
	h.respondJSON(w, period)
}

// GetCurrentPeriod обрабатывает запросы на чтение активного периода.
func (h *PeriodHandler) GetCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	period, err := h.Periods.Current()
	if err != nil {
		h.respondError(w, err, "failed to load bidding period")
		return
	}
	h.respondJSON(w, period)
}

// SweepPeriod обрабатывает запросы на обход заявок в льготном сроке.
func (h *PeriodHandler) SweepPeriod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Sweeper.Sweep(ctx)
	if err != nil {
		h.respondError(w, err, "failed to sweep bidding period")
		return
	}
	h.respondJSON(w, result)
}

// ClosePeriod обрабатывает запросы на закрытие периода.
func (h *PeriodHandler) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Closer.Close(ctx)
	if err != nil {
		h.respondError(w, err, "failed to close bidding period")
		return
	}
	h.respondJSON(w, result)
}

func (h *PeriodHandler) respondError(w http.ResponseWriter, err error, fallback string) {
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		h.Logger.Println(err)
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	h.Logger.Println(err)
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

func (h *PeriodHandler) respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Println(err)
	}
}
