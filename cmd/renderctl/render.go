package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/docrender/internal/doctree"
	"github.com/dgallion1/docrender/internal/parser"
	"github.com/dgallion1/docrender/internal/render"
	"github.com/spf13/cobra"
)

var (
	flagPageSize  int
	flagOutputDir string
	flagRich      bool
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a document into pages on stdout or into files",
	Long: `Render parses the given document and prints each page. With --output_dir,
pages are written as numbered files instead (page-1.md, page-1.html, ...).

Examples:
  renderctl render notes.md
  renderctl render report.docx --page_size 4000
  renderctl render manual.pdf --output_dir ./pages`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().IntVar(&flagPageSize, "page_size", 20000, "Maximum page size in bytes")
	renderCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Write pages to files in this directory instead of stdout")
	renderCmd.Flags().BoolVar(&flagRich, "rich", false, "Print the HTML form instead of markdown (stdout mode)")
}

func runRender(cmd *cobra.Command, args []string) error {
	if flagPageSize <= 0 {
		return fmt.Errorf("--page_size must be positive")
	}

	tree, err := parseFile(args[0])
	if err != nil {
		return err
	}

	if flagOutputDir != "" {
		if err := os.MkdirAll(flagOutputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	pageNum := 0
	send := func(ctx context.Context, plain, rich string) (string, error) {
		pageNum++
		if flagOutputDir == "" {
			if pageNum > 1 {
				fmt.Println("--- page", pageNum, "---")
			}
			if flagRich {
				fmt.Print(rich)
			} else {
				fmt.Print(plain)
			}
			return fmt.Sprintf("page-%d", pageNum), nil
		}
		mdPath := filepath.Join(flagOutputDir, fmt.Sprintf("page-%d.md", pageNum))
		if err := os.WriteFile(mdPath, []byte(plain), 0o644); err != nil {
			return "", err
		}
		htmlPath := filepath.Join(flagOutputDir, fmt.Sprintf("page-%d.html", pageNum))
		if err := os.WriteFile(htmlPath, []byte(rich), 0o644); err != nil {
			return "", err
		}
		return fmt.Sprintf("page-%d", pageNum), nil
	}

	if _, err := render.Paged(cmd.Context(), tree, flagPageSize, send); err != nil {
		return err
	}
	if flagOutputDir != "" {
		fmt.Printf("wrote %d pages to %s\n", pageNum, flagOutputDir)
	}
	return nil
}

func parseFile(path string) (*doctree.Node, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = true
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f, path)
}
