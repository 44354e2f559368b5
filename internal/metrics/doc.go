// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Load attempts by mode and result, and their duration
//   - Fallback substitutions by cause
//   - Stale loads discarded by the generation guard
//   - HTTP requests by route and status code
//   - Forecasts served by the data service
package metrics
