package router

import (
	"net/http"

	"github.com/senyabanana/banner-auction/internal/handlers"
)

func InitRoutes(bidHandler *handlers.BidHandler, periodHandler *handlers.PeriodHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ping", handlers.PingHandler)

	mux.HandleFunc("/api/periods/new", periodHandler.OpenPeriod)
	mux.HandleFunc("/api/periods/current", periodHandler.GetCurrentPeriod)
	mux.HandleFunc("/api/periods/sweep", periodHandler.SweepPeriod)
	mux.HandleFunc("/api/periods/close", periodHandler.ClosePeriod)

	mux.HandleFunc("/api/bids/new", bidHandler.AdmitBid)
	mux.HandleFunc("POST /api/bids/{commentId}/approve", bidHandler.ApproveBid)

	return mux
}
