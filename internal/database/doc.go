// Package database stores historical TFR observations in PostgreSQL.
//
// The table holds one row per year:
//
//	CREATE TABLE tfr_observations (
//	    year integer PRIMARY KEY,
//	    tfr  double precision NOT NULL
//	);
//
// PostgresStore reads it for the data service; Seed loads a JSON file into it.
package database
