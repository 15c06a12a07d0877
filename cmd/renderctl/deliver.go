package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dgallion1/docrender/internal/matrix"
	"github.com/dgallion1/docrender/internal/render"
	"github.com/spf13/cobra"
)

var (
	flagHomeserver string
	flagToken      string
	flagRoom       string
)

var deliverCmd = &cobra.Command{
	Use:   "deliver <file>",
	Short: "Render a document and post its pages to a Matrix room",
	Long: `Deliver parses the given document, renders it page by page, and posts
each page as a message to the target room. The markdown form becomes the
message body and the HTML form its formatted_body.

Example:
  renderctl deliver notes.md --homeserver https://matrix.example.org \
    --token "$MATRIX_ACCESS_TOKEN" --room '!abc123:example.org'`,
	Args: cobra.ExactArgs(1),
	RunE: runDeliver,
}

func init() {
	rootCmd.AddCommand(deliverCmd)

	deliverCmd.Flags().IntVar(&flagPageSize, "page_size", 20000, "Maximum page size in bytes")
	deliverCmd.Flags().StringVar(&flagHomeserver, "homeserver", "", "Homeserver base URL (required)")
	deliverCmd.Flags().StringVar(&flagToken, "token", "", "Access token (required)")
	deliverCmd.Flags().StringVar(&flagRoom, "room", "", "Target room ID (required)")
	deliverCmd.MarkFlagRequired("homeserver")
	deliverCmd.MarkFlagRequired("token")
	deliverCmd.MarkFlagRequired("room")
}

func runDeliver(cmd *cobra.Command, args []string) error {
	if flagPageSize <= 0 {
		return fmt.Errorf("--page_size must be positive")
	}

	tree, err := parseFile(args[0])
	if err != nil {
		return err
	}

	client := matrix.NewClient(flagHomeserver, flagToken)
	userID, err := client.WhoAmI(cmd.Context())
	if err != nil {
		return fmt.Errorf("credentials check: %w", err)
	}
	fmt.Printf("delivering as %s to %s\n", userID, flagRoom)

	send := func(ctx context.Context, plain, rich string) (string, error) {
		eventID, err := client.SendMessage(ctx, flagRoom, plain, rich)
		if err != nil {
			return "", err
		}
		fmt.Println("sent", eventID)
		// Stay under typical homeserver rate limits.
		time.Sleep(200 * time.Millisecond)
		return eventID, nil
	}

	eventIDs, err := render.Paged(cmd.Context(), tree, flagPageSize, send)
	if err != nil {
		return fmt.Errorf("delivered %d pages before failure: %w", len(eventIDs), err)
	}
	fmt.Printf("delivered %d pages\n", len(eventIDs))
	return nil
}
