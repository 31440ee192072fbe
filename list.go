package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"royal-terminal/internal/models"
	"royal-terminal/internal/storage"
	"royal-terminal/internal/ui"
)

// newListCmd instantiates and returns the conversation list command.
func newListCmd(root *options) *cobra.Command {
	var opts struct {
		Limit int
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*root)
			if err != nil {
				return err
			}

			persister, err := storage.Open(cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
			}
			defer persister.Close()

			conversations, err := persister.Load(cmd.Context())
			if err != nil {
				return err
			}

			printConversations(cmd.OutOrStdout(), conversations, opts.Limit)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 50, "Maximum number of conversations to show")
	return cmd
}

func printConversations(w io.Writer, conversations []models.Conversation, limit int) {
	fmt.Fprintln(w, ui.TitleStyle.Render(fmt.Sprintf("Conversations (%d)", len(conversations))))
	for i, conv := range conversations {
		if limit > 0 && i >= limit {
			fmt.Fprintln(w, ui.MetadataStyle.Render(fmt.Sprintf("... %d more", len(conversations)-limit)))
			return
		}
		fmt.Fprintf(w, "%s  %s  %s\n",
			ui.MetadataStyle.Render(conv.Timestamp.Format("2006-01-02 15:04")),
			conv.Title,
			ui.MetadataStyle.Render(fmt.Sprintf("(%d messages, %s)", len(conv.Messages), conv.ID)),
		)
	}
}
