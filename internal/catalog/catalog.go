package catalog

import (
	"github.com/angelmondragon/jewelry-admin/internal/localcache"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
)

// Catalog holds one view per entity kind.
type Catalog struct {
	views map[enums.EntityKind]*View
}

// New builds a view for every kind. hasRemote decides which kinds fetch a server copy.
func New(remote Lister, hasRemote func(enums.EntityKind) bool, cache Cache, notify Notifier, logg *logger.Logger) (*Catalog, error) {
	views := make(map[enums.EntityKind]*View)
	for _, kind := range enums.EntityKinds() {
		var lister Lister
		if remote != nil && hasRemote != nil && hasRemote(kind) {
			lister = remote
		}
		view, err := NewView(kind, lister, cache, notify, logg)
		if err != nil {
			return nil, err
		}
		views[kind] = view
	}
	return &Catalog{views: views}, nil
}

// View returns the view for kind.
func (c *Catalog) View(kind enums.EntityKind) (*View, error) {
	view, ok := c.views[kind]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown catalog kind").
			WithDetails(map[string]any{"kind": string(kind)})
	}
	return view, nil
}

// Append adds rec to the view for kind if that view is mounted.
func (c *Catalog) Append(kind enums.EntityKind, rec localcache.Record) bool {
	view, ok := c.views[kind]
	return ok && view.Append(rec)
}

// Remove drops id from the view for kind if that view is mounted.
func (c *Catalog) Remove(kind enums.EntityKind, id string) bool {
	view, ok := c.views[kind]
	return ok && view.Remove(id)
}
