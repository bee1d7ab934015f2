package catalog

import (
	"context"
	"fmt"

	"github.com/primordialab/primordium/internal/engine"
)

// Notifier adapts a Catalog into the engine's notification pipeline:
// stabilization and polymerization events flow in, discoveries get recorded.
type Notifier struct {
	id  string
	cat *Catalog
}

// NewNotifier creates a catalog-backed notifier with the given ID.
func NewNotifier(id string, cat *Catalog) *Notifier {
	return &Notifier{id: id, cat: cat}
}

// ID returns the notifier ID
func (n *Notifier) ID() string {
	return n.id
}

// Type returns the notifier type
func (n *Notifier) Type() string {
	return "catalog"
}

// Notify records catalog-relevant events and ignores the rest.
func (n *Notifier) Notify(ctx context.Context, event engine.Event) error {
	switch event.Kind {
	case engine.EventMoleculeStabilized:
		return n.cat.Record(string(event.WorldID), "molecule", event.Formula, event.Fingerprint, event.Name, event.Tick)
	case engine.EventPolymerFormed:
		fingerprint := fmt.Sprintf("%s|role:%s", event.Formula, event.Role)
		return n.cat.Record(string(event.WorldID), "polymer", event.Formula, fingerprint, event.Role, event.Tick)
	default:
		return nil
	}
}

// Close is a no-op; the underlying catalog is owned by the caller.
func (n *Notifier) Close() error {
	return nil
}
