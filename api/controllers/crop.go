package controllers

import (
	"io"
	"net/http"

	"github.com/angelmondragon/jewelry-admin/api/responses"
	"github.com/angelmondragon/jewelry-admin/api/validators"
	"github.com/angelmondragon/jewelry-admin/internal/crop"
	"github.com/angelmondragon/jewelry-admin/internal/forms"
	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
)

const (
	maxSlotIndex      = 1024
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
	cropFileField     = "file"
	cropSlotField     = "slot"
	zoomStepIn        = "in"
	zoomStepOut       = "out"
)

type cropAdjustRequest struct {
	Pan      *crop.Pan          `json:"pan"`
	Zoom     *float64           `json:"zoom"`
	Aspect   *enums.AspectRatio `json:"aspect"`
	ZoomStep string             `json:"zoomStep" validate:"omitempty,oneof=in out"`
	Area     *imagecodec.Rect   `json:"area"`
}

// CropOpen starts a crop session from an uploaded file. The body is multipart with
// a "file" part and a "slot" field.
func CropOpen(reg *forms.Registry, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formFromPath(r, reg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+multipartOverhead)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}
		if r.MultipartForm != nil {
			defer func() { _ = r.MultipartForm.RemoveAll() }()
		}

		slot, err := validators.ParseIntParam(r.FormValue(cropSlotField), cropSlotField, 0, maxSlotIndex)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		file, header, err := r.FormFile(cropFileField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.MissingField(cropFileField))
			return
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file"))
			return
		}

		view, err := form.OpenCrop(slot, data, header.Header.Get("Content-Type"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// CropRecrop opens a session on the image already stored in a slot.
func CropRecrop(reg *forms.Registry, logg *logger.Logger) http.HandlerFunc {
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
		view, err := form.Recrop(slot)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// CropAdjust applies a pan, zoom, aspect or zoom step, or stores a client-computed area.
func CropAdjust(reg *forms.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formFromPath(r, reg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cropAdjustRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var view crop.View
		switch {
		case req.Area != nil:
			view, err = form.ReportCropArea(*req.Area)
		case req.ZoomStep == zoomStepIn || req.ZoomStep == zoomStepOut:
			view, err = form.ZoomCrop(req.ZoomStep == zoomStepIn)
		default:
			view, err = form.AdjustCrop(crop.Update{Pan: req.Pan, Zoom: req.Zoom, Aspect: req.Aspect})
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CropSave rasterizes the selected area into the session's slot.
func CropSave(reg *forms.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formFromPath(r, reg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, err := form.SaveCrop(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

func CropCancel(reg *forms.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formFromPath(r, reg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, form.CancelCrop())
	}
}
