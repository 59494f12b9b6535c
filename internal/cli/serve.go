package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/lojasmm/tilebot/internal/config"
	"github.com/lojasmm/tilebot/internal/conversation"
	"github.com/lojasmm/tilebot/internal/estimate"
	"github.com/lojasmm/tilebot/internal/logging"
	"github.com/lojasmm/tilebot/internal/metrics"
	"github.com/lojasmm/tilebot/internal/notify"
	"github.com/lojasmm/tilebot/internal/session"
	"github.com/lojasmm/tilebot/internal/store"
	"github.com/lojasmm/tilebot/internal/webchat"
)

var flagPort string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat widget, its websocket and the metrics endpoint",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&flagPort, "port", "", "override PORT")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if flagPort != "" {
		cfg.Port = flagPort
	}
	logger := newLogger(cfg)

	db, err := store.NewBoltStore(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	chatMetrics := metrics.NewChatMetrics(reg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := notify.NewDispatcher(db, newSender(cfg, logger), cfg.OutboxPollInterval, chatMetrics, logger)
	go dispatcher.Run(ctx)

	unitPrice := cfg.UnitPrice
	sessions := session.NewManager(cfg.MaxSessions, cfg.SessionTTL, func() *conversation.Controller {
		return conversation.NewController(estimate.NewCalculator(nil, unitPrice))
	}, func(id string) {
		chatMetrics.SessionEvicted()
		logger.Debug("session evicted", "session_id", id)
	})

	handler := webchat.NewHandler(sessions, conversation.NewDispatcher(), webchat.Options{
		Timings:        timingsFrom(cfg),
		Outbox:         db,
		Metrics:        chatMetrics,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      webchat.NewRouter(handler, reg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tilebot: listening", "port", cfg.Port, "db", cfg.DBPath())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("tilebot: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("tilebot: stopped")
	return nil
}

// newSender prefers SendGrid and falls back to logging emails.
func newSender(cfg *config.Config, logger *logging.Logger) notify.EmailSender {
	sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	if sg == nil {
		logger.Warn("tilebot: SENDGRID_API_KEY not set, estimate emails will only be logged")
		return notify.NewStubEmailSender(logger)
	}
	return sg
}
