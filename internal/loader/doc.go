// Package loader runs the chart load pipeline:
//
//	acquire -> validate -> (fallback) -> reconcile -> present
//
// Each load takes a generation number when it starts. A load that finishes
// after a newer one has been displayed is discarded. Every load emits a
// loading status and then a success or error status, except discarded
// loads, which are only logged.
package loader
