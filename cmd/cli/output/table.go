package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderTable prints a pretty table to stdout
func RenderTable(headers []string, rows [][]interface{}) {
	RenderTableWithFooter(headers, rows, "")
}

// RenderTableWithFooter prints a table followed by a caption line such as
// "page 1 of 3 (12 items)".
func RenderTableWithFooter(headers []string, rows [][]interface{}, caption string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}
	if caption != "" {
		t.SetCaption(caption)
	}

	t.Render()
}

// PrintJSON writes v as indented JSON to stdout.
func PrintJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

// PageCaption formats the paging line shown under list tables.
func PageCaption(page, totalPages, totalItems int) string {
	if totalPages < 1 {
		totalPages = 1
	}
	return fmt.Sprintf("page %d of %d (%d items)", page, totalPages, totalItems)
}
