// Package offline holds the one-shot tfrserver modes.
//
//   - Download fetches the historical TFR series from the World Bank API and
//     writes it to the data file, seeding Postgres when configured.
//   - Predict extends a historical file with a forecast, writes the combined
//     series and optionally plots it.
package offline
