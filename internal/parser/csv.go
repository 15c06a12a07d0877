package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docrender/internal/doctree"
)

// CSVParser handles CSV files. The header row labels each cell; data rows
// become list items, so wide files still render as readable lines.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	root := doctree.NewNode(doctree.Root)
	if len(records) == 0 {
		return root, nil
	}

	headers := records[0]
	list := doctree.NewNode(doctree.List)
	for _, row := range records[1:] {
		var line strings.Builder
		for j, cell := range row {
			if j > 0 {
				line.WriteString(", ")
			}
			if j < len(headers) {
				line.WriteString(headers[j] + ": " + cell)
			} else {
				line.WriteString(cell)
			}
		}
		list.Append(doctree.NewNode(doctree.ListItem, doctree.NewText(line.String())))
	}

	if len(list.Children) > 0 {
		root.Append(list)
	}
	return root, nil
}
