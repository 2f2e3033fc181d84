package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"club-points-ledger/internal/mq"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect relayed point events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print point events as they arrive on the broker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		broker, err := mq.NewBackend(ctx, cfg.MQ)
		if err != nil {
			return fmt.Errorf("failed to connect to broker: %w", err)
		}
		if broker == nil {
			return fmt.Errorf("no broker configured, set MQ_BACKEND")
		}
		defer func() {
			if err := broker.Close(); err != nil {
				zap.L().Warn("Failed to close broker", zap.Error(err))
			}
		}()

		zap.L().Info("Tailing point events", zap.String("channel", cfg.MQ.Channel))
		err = broker.Subscribe(ctx, cfg.MQ.Channel, func(ctx context.Context, msg mq.Message) error {
			event, err := mq.DecodePointEvent(msg)
			if err != nil {
				zap.L().Warn("Skipping undecodable message", zap.String("id", msg.ID), zap.Error(err))
				return nil
			}
			fmt.Printf("%s  %-40s %-24s %+6d  %d -> %d\n",
				event.CreatedAt.Format("2006-01-02 15:04:05"),
				event.Key, event.TargetUserId, event.Applied, event.PointsBefore, event.PointsAfter)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
