package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/dnldd/papertrade/service"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paperCfg := service.PaperConfig{
		Watchlist:   cfg.Watchlist,
		FMPAPIKey:   cfg.FMPAPIKey,
		DBEndpoint:  cfg.DBEndpoint,
		DBUser:      cfg.DBUser,
		DBPass:      cfg.DBPass,
		Capital:     cfg.Capital,
		RiskPercent: cfg.RiskPercent,
		RunAt:       cfg.RunAt,
		Cancel:      cancel,
	}
	paper, err := service.NewPaper(ctx, &paperCfg)
	if err != nil {
		log.Printf("creating paper trading service: %v", err)
		return
	}

	if cfg.RunNow {
		err = paper.RunNow(ctx)
		if err != nil {
			log.Printf("running daily cycle: %v", err)
		}
		return
	}

	go handleTermination(ctx, cancel)
	err = paper.Run(ctx)
	if err != nil {
		log.Printf("running paper trading service: %v", err)
	}
}
