// Package notify delivers load status notifications.
//
// Every load attempt emits a loading status followed by one success or error
// status. A load overtaken by a newer one ends with a superseded error status,
// which the Hub delivers but does not replay.
// Notifiers:
//   - LogNotifier writes statuses to slog
//   - Hub pushes statuses to browsers over WebSocket (/ws)
//   - Multi fans out to several notifiers
package notify
