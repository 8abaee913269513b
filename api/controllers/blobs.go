package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/jewelry-admin/api/responses"
	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
)

// BlobSource resolves encoded image handles.
type BlobSource interface {
	Get(h imagecodec.Handle) (imagecodec.Blob, bool)
}

// BlobGet serves the bytes behind a handle, the way an object URL would.
func BlobGet(blobs BlobSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := imagecodec.Handle(chi.URLParam(r, "handle"))
		blob, ok := blobs.Get(handle)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "image not found"))
			return
		}
		w.Header().Set("Content-Type", blob.MIME)
		w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
		w.Header().Set("Cache-Control", "private, max-age=3600, immutable")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(blob.Data)
	}
}
