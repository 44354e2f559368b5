// Package poller refreshes the displayed chart from the data service on a
// fixed interval.
//
// Each tick runs one remote load with its own timeout. A failed refresh
// keeps the current chart; the loader reports it like any other load.
package poller
