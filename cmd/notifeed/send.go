package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/notifeed/internal/client"
	"github.com/nhle/notifeed/internal/ingest"
	"github.com/nhle/notifeed/internal/model"
)

var (
	sendType     string
	sendPriority string
	sendKafka    bool
)

var sendCmd = &cobra.Command{
	Use:   "send MESSAGE",
	Short: "Create a notification on the store, or publish a transaction event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		message := args[0]
		priority := strings.ToUpper(sendPriority)

		if sendKafka {
			p := ingest.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
			defer p.Close()
			if err := p.Publish(cmd.Context(), message, priority); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published to %s\n", cfg.Kafka.Topic)
			return nil
		}

		n, err := newClient(cfg, zap.NewNop()).Send(cmd.Context(), client.SendRequest{
			Message:  message,
			Type:     strings.ToUpper(sendType),
			Priority: priority,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created notification %s\n", n.ID)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendType, "type", "t", model.TypeAccount, "notification type")
	sendCmd.Flags().StringVarP(&sendPriority, "priority", "p", model.PriorityMedium, "LOW, MEDIUM or HIGH")
	sendCmd.Flags().BoolVar(&sendKafka, "kafka", false, "publish a transaction event instead of calling the store")
	rootCmd.AddCommand(sendCmd)
}
