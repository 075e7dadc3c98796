package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/omarshaarawi/draftbot/internal/api/espn"
	"github.com/omarshaarawi/draftbot/internal/api/fantasy"
	"github.com/omarshaarawi/draftbot/internal/bot"
	"github.com/omarshaarawi/draftbot/internal/config"
	"github.com/omarshaarawi/draftbot/internal/draft"
	"github.com/omarshaarawi/draftbot/internal/repository/memory"
	"github.com/omarshaarawi/draftbot/internal/scheduler"
	"github.com/omarshaarawi/draftbot/internal/service"
	"github.com/omarshaarawi/draftbot/internal/solver/branchbound"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	espnClient := espn.NewClient(cfg.ESPNAPI)
	espnAPI := espn.NewAPI(espnClient)
	fantasyAPI := fantasy.NewAPI(espnAPI)

	optimizer := draft.NewOptimizer(branchbound.Factory(branchbound.WithNodeLimit(cfg.Draft.SolverNodeLimit)))
	boardOptions := fantasy.BoardOptions{
		StarterWeight:   cfg.Draft.StarterWeight,
		ReserveWeight:   cfg.Draft.ReserveWeight,
		MaxFlexStarters: cfg.Draft.MaxFlexStarters,
		PoolSize:        cfg.Draft.PlayerPoolSize,
	}

	repo := memory.NewRepository()
	draftService := service.NewDraftService(fantasyAPI, repo, optimizer, cfg.ESPNAPI.TeamID, boardOptions)

	telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, draftService)
	if err != nil {
		return err
	}

	sched, err := scheduler.NewScheduler(draftService, telegramBot.SendMessage, cfg.Draft.PollInterval, cfg.Server.Timezone)
	if err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/", healthCheckHandler)
	server := &http.Server{Addr: cfg.Server.HealthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Error starting HTTP server", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			slog.Error("Error running telegram bot", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
