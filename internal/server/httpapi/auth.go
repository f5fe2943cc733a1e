package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"fundingintake/internal/server/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if err := r.services.Applications.Ping(req.Context()); err != nil {
		r.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) handleReviewerLogin(w http.ResponseWriter, req *http.Request) {
	if r.opts.MaxRequestBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxRequestBytes)
	}
	var body loginRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	sess, err := r.services.Reviewers.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
