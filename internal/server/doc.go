// Package server is the TFR data service.
//
// Routes:
//   - GET  /getData             historical records followed by the forecast
//   - GET  /getUnpredictedData  historical records only
//   - POST /predictData         forecast for a caller-supplied series
//   - GET  /health
//   - GET  /metrics             when enabled
package server
