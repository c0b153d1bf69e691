// Package extract reads every HTML table of a page into a two-level
// header table.
package extract

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/pollsmooth/internal/table"
	"golang.org/x/net/html"
)

type rawCell struct {
	text    string
	header  bool
	rowspan int
	colspan int
}

// Tables returns the tables of page in document order. Nested tables are
// returned as tables of their own.
func Tables(page string) ([]*table.Table, error) {
	return FromReader(strings.NewReader(page))
}

func FromReader(r io.Reader) ([]*table.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out []*table.Table
	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		if t := parseTable(tbl); t != nil {
			out = append(out, t)
		}
	})
	return out, nil
}

func parseTable(tbl *goquery.Selection) *table.Table {
	var head, body, foot [][]rawCell

	ownRows(tbl).Each(func(_ int, tr *goquery.Selection) {
		row := parseRow(tr)
		if len(row) == 0 {
			return
		}
		switch goquery.NodeName(tr.Parent()) {
		case "thead":
			head = append(head, row)
		case "tfoot":
			foot = append(foot, row)
		default:
			body = append(body, row)
		}
	})

	// without a thead, leading rows made only of <th> are the header
	if len(head) == 0 {
		for len(body) > 0 && allHeader(body[0]) {
			head = append(head, body[0])
			body = body[1:]
		}
	}
	body = append(body, foot...)

	headGrid := expandSpans(head)
	bodyGrid := expandSpans(body)

	width := 0
	for _, r := range append(headGrid, bodyGrid...) {
		width = max(width, len(r))
	}
	if width == 0 {
		return nil
	}

	t := table.New(headerKeys(headGrid, width))
	for _, r := range bodyGrid {
		row := make([]table.Value, width)
		for c, text := range r {
			if text != "" {
				row[c] = table.S(text)
			}
		}
		t.Append(row)
	}
	inferNumeric(t)

	return t
}

// ownRows selects the rows that belong to tbl itself and not to a table
// nested inside it.
func ownRows(tbl *goquery.Selection) *goquery.Selection {
	return tbl.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(tbl)
	})
}

func parseRow(tr *goquery.Selection) []rawCell {
	var row []rawCell
	tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		if hidden(cell.Nodes[0]) {
			return
		}
		row = append(row, rawCell{
			text:    cellText(cell.Nodes[0]),
			header:  goquery.NodeName(cell) == "th",
			rowspan: span(cell, "rowspan"),
			colspan: span(cell, "colspan"),
		})
	})
	return row
}

func span(cell *goquery.Selection, attr string) int {
	v, ok := cell.Attr(attr)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func allHeader(row []rawCell) bool {
	for _, c := range row {
		if !c.header {
			return false
		}
	}
	return true
}

type pending struct {
	text string
	left int
}

// expandSpans copies rowspan and colspan cells into every grid position
// they cover.
func expandSpans(rows [][]rawCell) [][]string {
	var (
		out   [][]string
		carry = map[int]pending{}
	)

	for _, row := range rows {
		var line []string
		col := 0

		fill := func() {
			for {
				p, ok := carry[col]
				if !ok {
					return
				}
				line = append(line, p.text)
				if p.left--; p.left == 0 {
					delete(carry, col)
				} else {
					carry[col] = p
				}
				col++
			}
		}

		for _, cell := range row {
			fill()
			for i := 0; i < cell.colspan; i++ {
				line = append(line, cell.text)
				if cell.rowspan > 1 {
					carry[col] = pending{text: cell.text, left: cell.rowspan - 1}
				}
				col++
			}
		}
		fill()

		out = append(out, line)
	}

	// rows still owed by a rowspan past the last row
	for len(carry) > 0 {
		var line []string
		width := 0
		for c := range carry {
			width = max(width, c+1)
		}
		line = make([]string, width)
		for c, p := range carry {
			line[c] = p.text
			if p.left--; p.left == 0 {
				delete(carry, c)
			} else {
				carry[c] = p
			}
		}
		out = append(out, line)
	}

	return out
}

// headerKeys builds the column labels. A table with several header rows
// takes its top label from the first row and its sub label from the
// last. Blank labels are named after their position.
func headerKeys(head [][]string, width int) []table.Key {
	keys := make([]table.Key, width)
	label := func(level, col int) string {
		if level < len(head) && col < len(head[level]) && head[level][col] != "" {
			return head[level][col]
		}
		if len(head) > 1 {
			return fmt.Sprintf("Unnamed: %d_level_%d", col, level)
		}
		return fmt.Sprintf("Unnamed: %d", col)
	}

	for c := range keys {
		switch len(head) {
		case 0:
			name := strconv.Itoa(c)
			keys[c] = table.Key{Top: name, Sub: name}
		case 1:
			name := label(0, c)
			keys[c] = table.Key{Top: name, Sub: name}
		default:
			last := len(head) - 1
			keys[c] = table.Key{Top: label(0, c), Sub: label(last, c)}
		}
	}
	return keys
}

// inferNumeric turns a column into numbers when every present cell
// parses as one, with "," allowed as a thousands separator.
func inferNumeric(t *table.Table) {
	for c := range t.Columns {
		nums := make([]float64, t.NumRows())
		ok, seen := true, false
		for r, row := range t.Rows {
			if row[c].IsMissing() {
				continue
			}
			n, err := strconv.ParseFloat(strings.ReplaceAll(row[c].Str, ",", ""), 64)
			if err != nil {
				ok = false
				break
			}
			nums[r] = n
			seen = true
		}
		if !ok || !seen {
			continue
		}
		for r, row := range t.Rows {
			if !row[c].IsMissing() {
				t.Rows[r][c] = table.N(nums[r])
			}
		}
	}
}

// cellText returns the visible text of a cell with whitespace collapsed.
// Line breaks count as spaces.
func cellText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "br":
				b.WriteByte(' ')
				return
			case "style", "script":
				return
			}
			if hidden(n) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(b.String()), " ")
}

func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key != "style" {
			continue
		}
		style := strings.ToLower(strings.ReplaceAll(a.Val, " ", ""))
		if strings.Contains(style, "display:none") {
			return true
		}
	}
	return false
}
