package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/senyabanana/banner-auction/internal/github"
	"github.com/senyabanana/banner-auction/internal/handlers"
	"github.com/senyabanana/banner-auction/internal/payment"
	"github.com/senyabanana/banner-auction/internal/repository"
	"github.com/senyabanana/banner-auction/internal/router"
	"github.com/senyabanana/banner-auction/internal/router/config"
	"github.com/senyabanana/banner-auction/internal/scheduler"
	"github.com/senyabanana/banner-auction/internal/services"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("cannot create data directory: %v", err)
	}

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)
	policy := cfg.Policy()

	periodRepo := repository.NewFilePeriodRepository(cfg.DataDir)
	bidderRepo := repository.NewFileBidderRepository(cfg.DataDir)
	archiveRepo := repository.NewFileArchiveRepository(cfg.DataDir)

	githubClient := github.NewRESTClient(cfg.GithubToken, cfg.GithubOwner, cfg.GithubRepo)
	charger := payment.NewStripeCharger(cfg.StripeSecretKey)

	admissionService := services.NewAdmissionService(periodRepo, bidderRepo, githubClient, policy, logger)
	approvalService := services.NewApprovalService(periodRepo, githubClient, policy, logger)
	sweepService := services.NewSweepService(periodRepo, bidderRepo, githubClient, policy, logger)
	closerService := services.NewCloserService(periodRepo, bidderRepo, archiveRepo, githubClient, charger, logger)
	periodService := services.NewPeriodService(periodRepo, githubClient, policy, cfg.AuctionDurationDays, logger)

	bidHandler := handlers.NewBidHandler(admissionService, approvalService, logger, 30*time.Second)
	periodHandler := handlers.NewPeriodHandler(periodService, sweepService, closerService, logger, 2*time.Minute)

	jobs, err := scheduler.New(sweepService, closerService, cfg.SweepCron, cfg.CloseCron, logger)
	if err != nil {
		log.Fatalf("cannot create scheduler: %v", err)
	}
	jobs.Start()
	defer jobs.Stop()

	routes := router.InitRoutes(bidHandler, periodHandler)

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
