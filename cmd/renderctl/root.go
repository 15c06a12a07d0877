package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "renderctl",
	Short: "Render documents into paged plain/rich output",
	Long: `renderctl parses a document (markdown, HTML, docx, pdf, csv, or plain
text), renders it simultaneously into markdown and HTML, and splits the
output into bounded-size pages at safe boundaries.

Usage:
  renderctl render <file> [flags]
  renderctl deliver <file> --homeserver <url> --token <token> --room <room-id>`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
