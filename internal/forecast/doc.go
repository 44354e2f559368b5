// Package forecast extends a yearly series with Holt linear-trend
// exponential smoothing.
//
// Smoothing parameters are picked by grid search on one-step-ahead squared
// error. Forecasts are rounded to three decimals and clamped to a
// configured range before being returned as estimated points.
package forecast
