// Package series validates raw TFR payloads and reconciles series for charting.
//
// The validator is the schema boundary: JSON decoded into untyped values is
// checked record by record and only then turned into a model.TimeSeries.
// The reconciler aligns observed and estimated points onto one shared,
// null-padded year axis.
package series
