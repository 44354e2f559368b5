// Package render turns reconciled datasets into something a browser can draw.
//
// ToRenderable produces the neutral ChartInput shape (labels plus two
// null-padded value arrays). Display is the single slot holding the chart
// currently on screen. HTML renders an ECharts page with go-echarts and
// Image renders PNG or SVG with go-chart.
package render
