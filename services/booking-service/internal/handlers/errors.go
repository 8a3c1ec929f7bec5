package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/errs"
)

// writeError renders err as {"error": kind, "message": ..., ...args}. Internal errors
// are logged with their cause and rendered without it.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	e := errs.From(err)
	if errors.Is(e, errs.ErrInternal) {
		logger.Error("request failed",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
		httpx.WriteError(w, e.HTTPStatus(), string(e.Kind), "internal server error", nil)
		return
	}
	httpx.WriteError(w, e.HTTPStatus(), string(e.Kind), e.Message, e.Args)
}

func writeDecodeError(w http.ResponseWriter, err error) {
	httpx.WriteError(w, http.StatusBadRequest, string(errs.KindValidation), err.Error(), nil)
}
