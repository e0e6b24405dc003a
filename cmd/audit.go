/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mobilecollector/backoffice/config"
	"github.com/mobilecollector/backoffice/internal/logging"
	"github.com/mobilecollector/backoffice/internal/mq"
	"github.com/mobilecollector/backoffice/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// auditCmd tails transaction events from the broker into the log.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Log transaction events published by the server",
	Long: `Subscribes to the transaction.created and transactions.cleanup
channels and writes every event to the structured log. Usage:

	MQ_BACKEND=rabbitmq backoffice audit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logging.Setup(cfg.LogLevel, cfg.Env)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer broker.Close()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return broker.Subscribe(ctx, services.ChannelTransactionCreated, func(ctx context.Context, msg mq.Message) error {
				var event services.TransactionCreatedEvent
				if err := json.Unmarshal(msg.Data, &event); err != nil {
					return fmt.Errorf("decode %s: %w", msg.ID, err)
				}
				log.Info().
					Str("message_id", msg.ID).
					Str("transaction_id", event.TransactionID).
					Str("customer_id", event.CustomerID).
					Str("user_id", event.UserID).
					Str("amount", event.Amount).
					Str("office_code", event.OfficeCode).
					Msg("transaction created")
				return nil
			})
		})
		g.Go(func() error {
			return broker.Subscribe(ctx, services.ChannelTransactionCleanup, func(ctx context.Context, msg mq.Message) error {
				var event services.TransactionCleanupEvent
				if err := json.Unmarshal(msg.Data, &event); err != nil {
					return fmt.Errorf("decode %s: %w", msg.ID, err)
				}
				log.Info().
					Str("message_id", msg.ID).
					Str("deleted_by", event.DeletedBy).
					Bool("delete_all", event.DeleteAll).
					Strs("office_codes", event.OfficeCodes).
					Int64("count", event.Count).
					Msg("transactions cleaned up")
				return nil
			})
		})

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
