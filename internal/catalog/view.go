package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/angelmondragon/jewelry-admin/internal/localcache"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
	"github.com/shopspring/decimal"
)

// Lister fetches the server copy of a kind.
type Lister interface {
	List(ctx context.Context, kind enums.EntityKind) ([]localcache.Record, error)
}

// Cache is the part of the reconciler a view reads and edits.
type Cache interface {
	Load(ctx context.Context, key string) []localcache.Record
	Patch(ctx context.Context, key, id string, fields map[string]any) (localcache.Record, error)
}

// Notifier surfaces fetch failures to the operator.
type Notifier interface {
	Error(message string)
}

// SortDirection orders Items.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Query filters and orders the displayed list.
type Query struct {
	Search string
	SortBy string
	Dir    SortDirection
}

// View is the displayed list for one entity kind: the merge of the server copy and
// the local shadow copy, plus whatever the operator added or removed since mount.
//
// Every Mount bumps the generation. A load that finishes after a newer Mount or an
// Unmount is dropped. Edits made while a load is in flight are recorded and replayed
// onto the loaded list, so they survive the commit.
type View struct {
	kind   enums.EntityKind
	key    string
	remote Lister
	cache  Cache
	notify Notifier
	logg   *logger.Logger

	mu         sync.RWMutex
	generation uint64
	mounted    bool
	loading    bool
	pending    []edit
	items      []localcache.Record
}

// edit is a list mutation kept for replay onto an in-flight load.
type edit func([]localcache.Record) []localcache.Record

// NewView builds the view for kind. A nil lister makes the view local-only.
func NewView(kind enums.EntityKind, remote Lister, cache Cache, notify Notifier, logg *logger.Logger) (*View, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown entity kind")
	}
	if cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog cache required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &View{
		kind:   kind,
		key:    localcache.KeyFor(kind),
		remote: remote,
		cache:  cache,
		notify: notify,
		logg:   logg,
	}, nil
}

func (v *View) Kind() enums.EntityKind {
	return v.kind
}

// Mount loads the merged list. It reports false when a newer Mount or an Unmount
// superseded this load, in which case the result was discarded.
func (v *View) Mount(ctx context.Context) ([]localcache.Record, bool) {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.mounted = true
	v.loading = true
	v.pending = nil
	v.mu.Unlock()

	ctx = v.logg.WithKind(ctx, string(v.kind))

	var server []localcache.Record
	if v.remote != nil {
		fetched, err := v.remote.List(ctx, v.kind)
		if err != nil {
			v.logg.Error(ctx, "remote list failed, showing local records only", err)
			if v.notify != nil {
				v.notify.Error("Failed to fetch " + string(v.kind) + " list")
			}
		} else {
			server = fetched
		}
	}
	local := v.cache.Load(ctx, v.key)
	merged := localcache.Merge(server, local)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation || !v.mounted {
		v.logg.Debug(ctx, "discarding stale catalog load")
		return nil, false
	}
	for _, apply := range v.pending {
		merged = apply(merged)
	}
	v.items = merged
	v.loading = false
	v.pending = nil
	return cloneRecords(merged), true
}

// Unmount clears the list and invalidates loads still in flight.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	v.mounted = false
	v.loading = false
	v.pending = nil
	v.items = nil
}

func (v *View) Mounted() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.mounted
}

// Append adds rec to the displayed list. It is a no-op while unmounted.
func (v *View) Append(rec localcache.Record) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return false
	}
	v.apply(func(items []localcache.Record) []localcache.Record {
		if rec.ID != "" {
			for _, existing := range items {
				if existing.ID == rec.ID {
					return items
				}
			}
		}
		return append(items, rec)
	})
	return true
}

// Remove drops id from the displayed list. It is a no-op while unmounted.
func (v *View) Remove(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return false
	}
	v.apply(func(items []localcache.Record) []localcache.Record {
		return localcache.RemoveByID(items, id)
	})
	return true
}

// UpdateLocal merges fields into a locally cached record and, when mounted, into the
// displayed list. Fields the edit does not name are kept.
func (v *View) UpdateLocal(ctx context.Context, id string, fields map[string]any) (localcache.Record, error) {
	if strings.TrimSpace(id) == "" {
		return localcache.Record{}, pkgerrors.MissingField("id")
	}
	merged, err := v.cache.Patch(ctx, v.key, id, fields)
	if err != nil {
		return localcache.Record{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return merged, nil
	}
	v.apply(func(items []localcache.Record) []localcache.Record {
		for i := range items {
			if items[i].ID == id {
				items[i] = merged
			}
		}
		return items
	})
	return merged, nil
}

// apply must be called with v.mu held.
func (v *View) apply(e edit) {
	v.items = e(v.items)
	if v.loading {
		v.pending = append(v.pending, e)
	}
}

// Items returns the displayed list filtered by id substring and sorted by one field.
func (v *View) Items(q Query) []localcache.Record {
	v.mu.RLock()
	out := make([]localcache.Record, 0, len(v.items))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, rec := range v.items {
		if search != "" && !strings.Contains(strings.ToLower(rec.ID), search) {
			continue
		}
		out = append(out, rec)
	}
	v.mu.RUnlock()

	if q.SortBy == "" {
		return out
	}
	desc := q.Dir == SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		c := compareField(out[i], out[j], q.SortBy)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// compareField orders numerically when both values parse as numbers, else by text.
func compareField(a, b localcache.Record, field string) int {
	av, bv := fieldValue(a, field), fieldValue(b, field)
	ad, aErr := decimal.NewFromString(av)
	bd, bErr := decimal.NewFromString(bv)
	if aErr == nil && bErr == nil {
		return ad.Cmp(bd)
	}
	return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
}

func fieldValue(rec localcache.Record, field string) string {
	if field == "id" {
		return rec.ID
	}
	return rec.String(field)
}

func cloneRecords(in []localcache.Record) []localcache.Record {
	out := make([]localcache.Record, len(in))
	copy(out, in)
	return out
}
