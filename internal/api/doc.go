// Package api provides the client for the TFR data service.
//
// Endpoints:
//   - GET  /getData      precomputed historical + forecast series
//   - POST /predictData  historical series in, extended series out
//
// Every call is a single attempt. Failures surface as *NetworkError so callers
// can decide whether to substitute fallback data. A circuit breaker short-cuts
// calls to a service that keeps failing.
package api
