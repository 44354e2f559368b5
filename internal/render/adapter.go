package render

import (
	"github.com/rickgao/tfr-chart/internal/model"
	"github.com/rickgao/tfr-chart/internal/notify"
)

// Adapter is the presentation boundary: it installs datasets into the
// display and forwards statuses to the notifier.
type Adapter struct {
	title    string
	display  *Display
	notifier notify.Notifier
}

// NewAdapter creates an Adapter. notifier may be nil.
func NewAdapter(title string, display *Display, notifier notify.Notifier) *Adapter {
	return &Adapter{title: title, display: display, notifier: notifier}
}

// Present converts ds and installs it as load generation gen.
// ok is false when a newer load is already displayed.
func (a *Adapter) Present(gen uint64, ds model.ReconciledDataset, fallback bool) (*Chart, bool) {
	in := ToRenderable(ds)
	in.Title = a.title
	return a.display.Install(gen, in, fallback)
}

// Notify forwards a status.
func (a *Adapter) Notify(s notify.Status) {
	if a.notifier != nil {
		a.notifier.Notify(s)
	}
}

// Display returns the underlying display slot.
func (a *Adapter) Display() *Display {
	return a.display
}
