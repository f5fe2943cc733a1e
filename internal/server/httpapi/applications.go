package httpapi

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"fundingintake/internal/server/service"
)

func (r *Router) handleSubmitApplication(w http.ResponseWriter, req *http.Request) {
	if r.opts.MaxRequestBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxRequestBytes)
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request entity too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "empty body")
		return
	}

	rec, err := r.services.Applications.Submit(req.Context(), body)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save submission")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (r *Router) handleListApplications(w http.ResponseWriter, req *http.Request) {
	list, err := r.services.Applications.List(req.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch submissions")
		return
	}
	if reviewer := getReviewer(req.Context()); reviewer != "" {
		r.logger.Info("applications listed", zap.String("reviewer", reviewer), zap.Int("count", len(list)))
	}
	writeJSON(w, http.StatusOK, list)
}
