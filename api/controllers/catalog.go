package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/jewelry-admin/api/responses"
	"github.com/angelmondragon/jewelry-admin/internal/catalog"
	"github.com/angelmondragon/jewelry-admin/internal/localcache"
	"github.com/angelmondragon/jewelry-admin/internal/submission"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
)

type catalogListResponse struct {
	Kind  string              `json:"kind"`
	Items []localcache.Record `json:"items"`
}

// CatalogList mounts the view on first use or when refresh=true, then returns the
// filtered and sorted list.
func CatalogList(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := viewFromPath(r, cat)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		refresh := false
		if raw := strings.TrimSpace(query.Get("refresh")); raw != "" {
			refresh, err = strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid refresh value"))
				return
			}
		}
		dir := catalog.SortDirection(strings.ToLower(strings.TrimSpace(query.Get("dir"))))
		if dir != "" && dir != catalog.SortAsc && dir != catalog.SortDesc {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "dir must be asc or desc"))
			return
		}

		if refresh || !view.Mounted() {
			view.Mount(r.Context())
		}
		items := view.Items(catalog.Query{
			Search: query.Get("q"),
			SortBy: strings.TrimSpace(query.Get("sort")),
			Dir:    dir,
		})
		responses.WriteSuccess(w, catalogListResponse{Kind: string(view.Kind()), Items: items})
	}
}

// CatalogUnmount drops the displayed list; loads still in flight are discarded.
func CatalogUnmount(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := viewFromPath(r, cat)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view.Unmount()
		w.WriteHeader(http.StatusNoContent)
	}
}

// CatalogDelete removes a record remotely and locally.
func CatalogDelete(pipeline *submission.Pipeline, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := kindFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := pipeline.Delete(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var warnings []string
		if result.RemoteFailed {
			warnings = append(warnings, "backend delete failed; removed locally")
		}
		if result.LocalFailed {
			warnings = append(warnings, "local delete failed")
		}
		responses.WriteSuccessWithWarnings(w, http.StatusOK, result, warnings)
	}
}

// CatalogUpdateProduct edits a locally cached product. Fields in the body replace the
// cached ones; fields it omits are kept.
// Only products can be edited.
func CatalogUpdateProduct(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := kindFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if kind != enums.EntityKindProduct {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "only products can be edited"))
			return
		}
		view, err := cat.View(kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fields, err := decodeObject(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rec, err := view.UpdateLocal(r.Context(), chi.URLParam(r, "id"), fields)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rec)
	}
}

func kindFromPath(r *http.Request) (enums.EntityKind, error) {
	kind, err := enums.ParseEntityKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind")
	}
	return kind, nil
}

func viewFromPath(r *http.Request, cat *catalog.Catalog) (*catalog.View, error) {
	kind, err := kindFromPath(r)
	if err != nil {
		return nil, err
	}
	return cat.View(kind)
}

func decodeObject(r *http.Request) (map[string]any, error) {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	if fields == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body must be an object")
	}
	return fields, nil
}
