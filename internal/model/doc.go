// Package model defines shared data types used across the TFR chart service.
//
// Conventions:
//   - Periods: calendar years as int
//   - Values: total fertility rate as float64, always finite
//   - Missing values on an aligned axis: nil *float64 (JSON null)
//   - Series are immutable once built; ordering is ascending by year
package model
