package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/senyabanana/banner-auction/internal/models"
	"github.com/senyabanana/banner-auction/internal/services"
	"github.com/senyabanana/banner-auction/internal/utils"
)

// BidHandler - структура для обработки HTTP-запросов по заявкам.
type BidHandler struct {
	Admission *services.AdmissionService
	Approval  *services.ApprovalService
	Logger    *log.Logger
	Timeout   time.Duration
}

// NewBidHandler создает новый экземпляр BidHandler.
func NewBidHandler(admission *services.AdmissionService, approval *services.ApprovalService, logger *log.Logger, timeout time.Duration) *BidHandler {
	return &BidHandler{
		Admission: admission,
		Approval:  approval,
		Logger:    logger,
		Timeout:   timeout,
	}
}

// admitRequest - тело запроса на приём заявки.
type admitRequest struct {
	CommentID int64 `json:"commentId"`
}

// AdmitBid обрабатывает запросы на приём заявки из комментария.
func (h *BidHandler) AdmitBid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req admitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CommentID <= 0 {
		utils.SendErrorResponse(w, http.StatusBadRequest, "commentId must be a positive integer")
		return
	}

	result, err := h.Admission.Admit(ctx, req.CommentID)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to admit bid")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Println(err)
	}
}

// ApproveBid обрабатывает сигнал одобрения по заявке.
func (h *BidHandler) ApproveBid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	commentID, err := strconv.ParseInt(r.PathValue("commentId"), 10, 64)
	if err != nil || commentID <= 0 {
		utils.SendErrorResponse(w, http.StatusBadRequest, "commentId must be a positive integer")
		return
	}

	result, err := h.Approval.Approve(ctx, commentID)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to process approval")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Println(err)
	}
}
