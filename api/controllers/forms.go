package controllers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/jewelry-admin/api/responses"
	"github.com/angelmondragon/jewelry-admin/api/validators"
	"github.com/angelmondragon/jewelry-admin/internal/drafts"
	"github.com/angelmondragon/jewelry-admin/internal/forms"
	"github.com/angelmondragon/jewelry-admin/internal/submission"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
)

type createFormRequest struct {
	Kind string `json:"kind" validate:"required,oneof=product media banner"`
}

type fieldsRequest struct {
	Fields map[string]string `json:"fields" validate:"required"`
}

type tagRequest struct {
	Group   string `json:"group" validate:"required"`
	Tag     string `json:"tag" validate:"required"`
	Checked bool   `json:"checked"`
}

// FormCreate opens an empty draft of the requested kind.
func FormCreate(reg *forms.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFormRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		form, err := reg.Create(enums.EntityKind(req.Kind))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, form.Snapshot())
	}
}

func FormGet(reg *forms.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formFromPath(r, reg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, form.Snapshot())
	}
}

// FormDiscard closes the form and frees its images.
func FormDiscard(reg *forms.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := formIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := reg.Discard(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// FormSetFields applies scalar edits. Field names are applied in the kind's form order.
func FormSetFields(reg *forms.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formFromPath(r, reg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req fieldsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, err := form.SetFields(orderedFields(form.Kind(), req.Fields))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

func FormToggleTag(reg *forms.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formFromPath(r, reg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req tagRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, err := form.ToggleTag(req.Group, req.Tag, req.Checked)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

func FormRemoveImage(reg *forms.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formFromPath(r, reg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slot, err := slotFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, err := form.RemoveImage(slot)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// FormSubmit runs the submission pipeline on the form's draft.
func FormSubmit(reg *forms.Registry, pipeline *submission.Pipeline, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formFromPath(r, reg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var result submission.Result
		err = form.WithDraft(func(store *drafts.Store) error {
			var submitErr error
			result, submitErr = pipeline.Submit(r.Context(), store)
			return submitErr
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessWithWarnings(w, http.StatusCreated, result, result.Warnings)
	}
}

func formIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "formID"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form id")
	}
	return id, nil
}

func formFromPath(r *http.Request, reg *forms.Registry) (*forms.Form, error) {
	id, err := formIDFromPath(r)
	if err != nil {
		return nil, err
	}
	return reg.Get(id)
}

func slotFromPath(r *http.Request) (int, error) {
	return validators.ParseIntParam(chi.URLParam(r, "slot"), "slot", 0, maxSlotIndex)
}

// orderedFields keeps edits deterministic: known fields first in form order, then
// unknown names sorted so the first rejection is stable.
func orderedFields(kind enums.EntityKind, fields map[string]string) []drafts.Field {
	out := make([]drafts.Field, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, name := range drafts.FieldNames(kind) {
		if value, ok := fields[name]; ok {
			out = append(out, drafts.Field{Name: name, Value: value})
			seen[name] = struct{}{}
		}
	}
	var unknown []string
	for name := range fields {
		if _, ok := seen[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		out = append(out, drafts.Field{Name: name, Value: fields[name]})
	}
	return out
}
