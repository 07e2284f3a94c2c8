package treeview

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/rbset/pkg/rbtree"
)

const (
	chartWidth      = "1200px"
	chartHeight     = "800px"
	redNodeColor    = "#d62728"
	blackNodeColor  = "#222222"
	sentinelColor   = "#bbbbbb"
	nodeSymbolSize  = 14
	sentinelSymSize = 6
	sentinelName    = "nil"
)

// RenderHTML writes a self-contained echarts page drawing the tree top-down.
// Sentinel leaves are drawn as small grey squares so every live node shows two children.
func RenderHTML(out io.Writer, title string, root *rbtree.Snapshot) error {
	chart := charts.NewTree()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)

	data := []opts.TreeData{}
	if root != nil {
		data = append(data, *chartNode(root))
	}

	chart.AddSeries("rbtree", data, charts.WithTreeOpts(opts.TreeChart{
		Layout:           "orthogonal",
		Orient:           "TB",
		InitialTreeDepth: -1,
		Roam:             opts.Bool(true),
		Label:            &opts.Label{Show: opts.Bool(true), Position: "top"},
	}))

	err := chart.Render(out)
	if err != nil {
		return fmt.Errorf("render tree chart: %w", err)
	}

	return nil
}

func chartNode(snap *rbtree.Snapshot) *opts.TreeData {
	if snap == nil {
		return &opts.TreeData{
			Name:       sentinelName,
			Symbol:     "rect",
			SymbolSize: sentinelSymSize,
			ItemStyle:  &opts.ItemStyle{Color: sentinelColor},
		}
	}

	fill := blackNodeColor
	if snap.Red() {
		fill = redNodeColor
	}

	return &opts.TreeData{
		Name:       strconv.Itoa(int(snap.Key)),
		Value:      snap.Color,
		SymbolSize: nodeSymbolSize,
		ItemStyle:  &opts.ItemStyle{Color: fill},
		Children:   []*opts.TreeData{chartNode(snap.Left), chartNode(snap.Right)},
	}
}
