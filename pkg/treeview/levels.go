// Package treeview renders rbtree snapshots for humans and machines: a
// level-order text dump, a per-level table, JSON/YAML documents and an
// interactive HTML chart.
package treeview

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/rbset/pkg/rbtree"
)

// NoChild is printed in place of a sentinel child.
const NoChild = -1

// Node is one entry of a level listing.
type Node struct {
	Key   int32
	Color string
	// Left and Right hold the child keys, nil for sentinels.
	Left  *int32
	Right *int32
}

// Level is one depth of the tree, left to right.
type Level struct {
	Nodes []Node
	Depth int
}

// Levels walks the snapshot breadth first. An empty tree has no levels.
func Levels(root *rbtree.Snapshot) []Level {
	var levels []Level

	queue := []*rbtree.Snapshot{}
	if root != nil {
		queue = append(queue, root)
	}

	for depth := 1; len(queue) > 0; depth++ {
		level := Level{Depth: depth, Nodes: make([]Node, 0, len(queue))}
		next := []*rbtree.Snapshot{}

		for _, snap := range queue {
			nd := Node{Key: snap.Key, Color: snap.Color}

			if snap.Left != nil {
				nd.Left = &snap.Left.Key
				next = append(next, snap.Left)
			}

			if snap.Right != nil {
				nd.Right = &snap.Right.Key
				next = append(next, snap.Right)
			}

			level.Nodes = append(level.Nodes, nd)
		}

		levels = append(levels, level)
		queue = next
	}

	return levels
}

// Printer writes level listings.
type Printer struct {
	red   *color.Color
	black *color.Color
}

// NewPrinter creates a Printer. With colorize off the output is plain text.
func NewPrinter(colorize bool) *Printer {
	printer := &Printer{
		red:   color.New(color.FgRed, color.Bold),
		black: color.New(color.FgHiBlack, color.Bold),
	}

	if colorize {
		printer.red.EnableColor()
		printer.black.EnableColor()
	} else {
		printer.red.DisableColor()
		printer.black.DisableColor()
	}

	return printer
}

// WriteLevels prints the size line followed by one line per level:
//
//	rbtree size: 3
//	1 floor(1): 2(black)[1 3]
//	2 floor(2): 1(red)[-1 -1] 3(red)[-1 -1]
func (p *Printer) WriteLevels(out io.Writer, size int, levels []Level) error {
	_, err := fmt.Fprintf(out, "rbtree size: %d\n", size)
	if err != nil {
		return fmt.Errorf("write size: %w", err)
	}

	for _, level := range levels {
		entries := make([]string, 0, len(level.Nodes))

		for _, nd := range level.Nodes {
			entries = append(entries, fmt.Sprintf("%d(%s)[%s %s]",
				nd.Key, p.paint(nd.Color), childLabel(nd.Left), childLabel(nd.Right)))
		}

		_, err = fmt.Fprintf(out, "%d floor(%d): %s\n", level.Depth, len(level.Nodes), strings.Join(entries, " "))
		if err != nil {
			return fmt.Errorf("write level %d: %w", level.Depth, err)
		}
	}

	return nil
}

func (p *Printer) paint(nodeColor string) string {
	if nodeColor == rbtree.ColorRed {
		return p.red.Sprint(nodeColor)
	}

	return p.black.Sprint(nodeColor)
}

func childLabel(key *int32) string {
	if key == nil {
		return strconv.Itoa(NoChild)
	}

	return strconv.Itoa(int(*key))
}

// LevelTable summarizes the levels as a table: node count, red/black split and keys.
func LevelTable(levels []Level) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Depth", "Nodes", "Red", "Black", "Keys"})

	total := 0

	for _, level := range levels {
		reds := 0
		keys := make([]string, 0, len(level.Nodes))

		for _, nd := range level.Nodes {
			if nd.Color == rbtree.ColorRed {
				reds++
			}

			keys = append(keys, strconv.Itoa(int(nd.Key)))
		}

		total += len(level.Nodes)
		tbl.AppendRow(table.Row{level.Depth, len(level.Nodes), reds, len(level.Nodes) - reds, strings.Join(keys, " ")})
	}

	tbl.AppendFooter(table.Row{"Total", total})

	return tbl.Render()
}
