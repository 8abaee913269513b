package submission

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/jewelry-admin/internal/drafts"
	"github.com/angelmondragon/jewelry-admin/internal/localcache"
	"github.com/angelmondragon/jewelry-admin/internal/toasts"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
	"github.com/angelmondragon/jewelry-admin/pkg/metrics"
)

const localSaveFailedMessage = "Saved to backend but local save failed"

// Remote creates and deletes entities on the shop backend.
type Remote interface {
	Add(ctx context.Context, form drafts.Form) (localcache.Record, error)
	Delete(ctx context.Context, kind enums.EntityKind, id string) error
}

// Cache is the local shadow copy.
type Cache interface {
	Append(ctx context.Context, key string, rec localcache.Record) error
	Remove(ctx context.Context, key, id string) error
}

// Views are the displayed lists. Both calls are no-ops for unmounted views.
type Views interface {
	Append(kind enums.EntityKind, rec localcache.Record) bool
	Remove(kind enums.EntityKind, id string) bool
}

// Notifier is the operator-facing toast channel.
type Notifier interface {
	Success(message string)
	Warning(message string)
	FromError(err error) toasts.Toast
}

// Params wire a Pipeline.
type Params struct {
	Remote    Remote
	HasRemote func(enums.EntityKind) bool
	Cache     Cache
	Views     Views
	Notifier  Notifier
	Logger    *logger.Logger
	Metrics   *metrics.PipelineMetrics
}

// Pipeline turns a valid draft into a remote entity plus a local shadow copy.
type Pipeline struct {
	remote    Remote
	hasRemote func(enums.EntityKind) bool
	cache     Cache
	views     Views
	notify    Notifier
	logg      *logger.Logger
	metrics   *metrics.PipelineMetrics
}

// Result describes a completed submission.
type Result struct {
	Kind     enums.EntityKind   `json:"kind"`
	Created  *localcache.Record `json:"created,omitempty"`
	Local    localcache.Record  `json:"local"`
	Released int                `json:"releasedImages"`
	Warnings []string           `json:"warnings,omitempty"`
}

// DeleteResult describes a completed delete. The local copy is always removed.
type DeleteResult struct {
	RemoteFailed bool `json:"remoteFailed"`
	LocalFailed  bool `json:"localFailed"`
}

func New(params Params) (*Pipeline, error) {
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "submission cache required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "submission notifier required")
	}
	hasRemote := params.HasRemote
	if params.Remote == nil || hasRemote == nil {
		hasRemote = func(enums.EntityKind) bool { return false }
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Pipeline{
		remote:    params.Remote,
		hasRemote: hasRemote,
		cache:     params.Cache,
		views:     params.Views,
		notify:    params.Notifier,
		logg:      logg,
		metrics:   params.Metrics,
	}, nil
}

// Submit validates the draft, sends it to the backend and records a local copy.
//
// A remote failure leaves the draft and the cache untouched. Once the remote call
// succeeds the draft is reset even when the local append fails.
func (p *Pipeline) Submit(ctx context.Context, store *drafts.Store) (Result, error) {
	kind := store.Kind()
	ctx = p.logg.WithKind(ctx, string(kind))

	if err := store.Validate(); err != nil {
		p.metrics.IncSubmission(string(kind), metrics.OutcomeInvalid)
		p.notify.FromError(err)
		return Result{}, err
	}
	form, err := store.Form()
	if err != nil {
		return Result{}, p.fail(ctx, kind, err)
	}
	snapshot, err := store.Snapshot()
	if err != nil {
		return Result{}, p.fail(ctx, kind, err)
	}

	result := Result{Kind: kind, Local: snapshot}
	if p.hasRemote(kind) {
		started := time.Now()
		created, err := p.remote.Add(ctx, form)
		if err != nil {
			return Result{}, p.fail(ctx, kind, err)
		}
		p.logg.Info(p.logg.WithField(ctx, "duration_ms", time.Since(started).Milliseconds()), "remote add succeeded")
		result.Created = &created
		p.appendView(kind, created)
	} else {
		p.appendView(kind, snapshot)
	}

	outcome := metrics.OutcomeSuccess
	if err := p.cache.Append(ctx, localcache.KeyFor(kind), snapshot); err != nil {
		p.logg.Error(ctx, "local append failed after remote success", err)
		p.notify.Warning(localSaveFailedMessage)
		result.Warnings = append(result.Warnings, localSaveFailedMessage)
		outcome = metrics.OutcomeLocalFailure
	}

	result.Released = len(store.Reset())
	p.metrics.IncSubmission(string(kind), outcome)
	if outcome == metrics.OutcomeSuccess {
		p.notify.Success(displayName(kind) + " added successfully!")
	}
	return result, nil
}

// Delete removes id remotely first, then locally. A remote failure is logged and
// does not stop the local removal, so the record can reappear on the next mount if
// the backend still has it.
func (p *Pipeline) Delete(ctx context.Context, kind enums.EntityKind, id string) (DeleteResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DeleteResult{}, pkgerrors.MissingField("id")
	}
	ctx = p.logg.WithFields(ctx, map[string]any{"kind": string(kind), "record_id": id})

	var result DeleteResult
	if p.hasRemote(kind) {
		if err := p.remote.Delete(ctx, kind, id); err != nil {
			p.logg.Error(ctx, "remote delete failed, removing locally anyway", err)
			result.RemoteFailed = true
		}
	}
	if err := p.cache.Remove(ctx, localcache.KeyFor(kind), id); err != nil {
		p.logg.Error(ctx, "local delete failed", err)
		p.notify.FromError(err)
		result.LocalFailed = true
	}
	if p.views != nil {
		p.views.Remove(kind, id)
	}

	switch {
	case result.LocalFailed:
		p.metrics.IncDelete(string(kind), metrics.OutcomeLocalFailure)
	case result.RemoteFailed:
		p.metrics.IncDelete(string(kind), metrics.OutcomeFailure)
	default:
		p.metrics.IncDelete(string(kind), metrics.OutcomeSuccess)
		p.notify.Success(displayName(kind) + " deleted")
	}
	return result, nil
}

func (p *Pipeline) fail(ctx context.Context, kind enums.EntityKind, err error) error {
	p.logg.Error(ctx, "submission failed", err)
	p.metrics.IncSubmission(string(kind), metrics.OutcomeFailure)
	p.notify.FromError(err)
	return err
}

func (p *Pipeline) appendView(kind enums.EntityKind, rec localcache.Record) {
	if p.views != nil {
		p.views.Append(kind, rec)
	}
}

func displayName(kind enums.EntityKind) string {
	name := string(kind)
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
