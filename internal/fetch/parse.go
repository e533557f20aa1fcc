package fetch

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/tablewarden/tablewarden/pkg/tables"
)

// Parse extracts every <table> from an HTML document. The first row of
// a table (th or td cells) becomes the column schema; tables without a
// data row are skipped.
func Parse(r io.Reader) ([]*tables.Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var out []*tables.Table
	for _, node := range findAll(doc, "table") {
		if table := parseTable(node); table != nil {
			out = append(out, table)
		}
	}
	return out, nil
}

// parseTable converts one table element, nil when it has no usable rows.
func parseTable(node *html.Node) *tables.Table {
	var grid [][]string
	for _, tr := range findAll(node, "tr") {
		var cells []string
		for _, cell := range findAll(tr, "td", "th") {
			cells = append(cells, tables.CleanCell(text(cell)))
		}
		if len(cells) > 0 {
			grid = append(grid, cells)
		}
	}
	if len(grid) < 2 {
		return nil
	}

	header := grid[0]
	table := tables.New(header...)
	for _, cells := range grid[1:] {
		row := make(tables.Row, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		if len(header) >= 2 {
			row[header[1]] = tables.FormatIdentifier(row[header[1]])
		}
		table.Append(row)
	}
	return table
}

// findAll returns the descendant elements with any of the given tag
// names, in document order, without descending into a matched element.
func findAll(node *html.Node, names ...string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, name := range names {
				if n.Data == name {
					out = append(out, n)
					return
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	return out
}

// text collects the concatenated text content of a node.
func text(node *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return sb.String()
}
