// Package web is the chart app's HTTP surface.
//
// The index page shows the current chart in an ECharts frame, the latest
// load status, and forms for the three load modes. Status updates are pushed
// over /ws; the page reloads the frame when a load succeeds.
package web
