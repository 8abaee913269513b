package localcache

import (
	"context"
	"sync"

	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
)

const malformedWarning = "Local data was unreadable and has been ignored"

// Notifier receives non-fatal conditions the operator should see.
type Notifier interface {
	Warning(message string)
}

// Reconciler is the single gateway to the persisted local cache.
//
// Append, Remove, Update and Patch are read-modify-write. The mutex serializes them within
// this process only; two processes sharing a backend race and the last write wins.
type Reconciler struct {
	backend Backend
	logg    *logger.Logger
	notify  Notifier
	mu      sync.Mutex
}

func New(backend Backend, logg *logger.Logger, notify Notifier) (*Reconciler, error) {
	if backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cache backend required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Reconciler{backend: backend, logg: logg, notify: notify}, nil
}

// Load returns the persisted sequence for key. It never fails: unreadable or malformed
// data yields an empty sequence plus a logged warning.
func (r *Reconciler) Load(ctx context.Context, key string) []Record {
	records, _, err := r.read(ctx, key)
	if err == nil {
		return records
	}
	ctx = r.logg.WithField(ctx, "cache_key", key)
	if pkgerrors.IsCode(err, pkgerrors.CodeMalformedLocalData) {
		r.logg.Warn(ctx, "local cache malformed, treating as empty")
		r.warn(malformedWarning)
	} else {
		r.logg.Error(ctx, "local cache read failed, treating as empty", err)
		r.warn("Local data could not be read")
	}
	return []Record{}
}

// Append adds rec to the end of the sequence at key.
func (r *Reconciler) Append(ctx context.Context, key string, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, _, err := r.read(ctx, key)
	if err != nil {
		return err
	}
	return r.write(ctx, key, append(records, rec))
}

// Remove drops every record with id. A missing key is left untouched.
func (r *Reconciler) Remove(ctx context.Context, key, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, found, err := r.read(ctx, key)
	if err != nil || !found {
		return err
	}
	return r.write(ctx, key, RemoveByID(records, id))
}

// Update replaces the record whose id matches rec.ID, keeping its position.
func (r *Reconciler) Update(ctx context.Context, key string, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, _, err := r.read(ctx, key)
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == rec.ID {
			records[i] = rec
			return r.write(ctx, key, records)
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "record not found in local cache").
		WithDetails(map[string]any{"id": rec.ID})
}

// Patch merges fields into the record with id, keeping every field the patch does not
// name. It returns the merged record.
func (r *Reconciler) Patch(ctx context.Context, key, id string, fields map[string]any) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, _, err := r.read(ctx, key)
	if err != nil {
		return Record{}, err
	}
	for i := range records {
		if records[i].ID != id {
			continue
		}
		merged := NewRecord(id, records[i].Fields)
		for k, v := range fields {
			if k == "id" {
				continue
			}
			merged.Fields[k] = v
		}
		records[i] = merged
		if err := r.write(ctx, key, records); err != nil {
			return Record{}, err
		}
		return merged, nil
	}
	return Record{}, pkgerrors.New(pkgerrors.CodeNotFound, "record not found in local cache").
		WithDetails(map[string]any{"id": id})
}

// Save overwrites the whole sequence at key.
func (r *Reconciler) Save(ctx context.Context, key string, records []Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(ctx, key, records)
}

// ReadString returns a raw string entry such as the access token.
func (r *Reconciler) ReadString(ctx context.Context, key string) (string, bool, error) {
	value, found, err := r.backend.Read(ctx, key)
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read local cache")
	}
	return string(value), found, nil
}

// WriteString stores a raw string entry.
func (r *Reconciler) WriteString(ctx context.Context, key, value string) error {
	if err := r.backend.Write(ctx, key, []byte(value)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write local cache")
	}
	return nil
}

// DeleteKey removes an entry entirely.
func (r *Reconciler) DeleteKey(ctx context.Context, key string) error {
	if err := r.backend.Delete(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete local cache entry")
	}
	return nil
}

func (r *Reconciler) read(ctx context.Context, key string) ([]Record, bool, error) {
	raw, found, err := r.backend.Read(ctx, key)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read local cache")
	}
	if !found {
		return []Record{}, false, nil
	}
	records, err := DecodeList(raw)
	if err != nil {
		return nil, true, pkgerrors.Wrap(pkgerrors.CodeMalformedLocalData, err, "local cache is not a list of records").
			WithDetails(map[string]any{"key": key})
	}
	return records, true, nil
}

func (r *Reconciler) write(ctx context.Context, key string, records []Record) error {
	payload, err := EncodeList(records)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode local cache")
	}
	if err := r.backend.Write(ctx, key, payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write local cache")
	}
	return nil
}

func (r *Reconciler) warn(message string) {
	if r.notify != nil {
		r.notify.Warning(message)
	}
}
