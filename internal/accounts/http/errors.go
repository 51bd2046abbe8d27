package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/spacehub/internal/accounts/service"
	"github.com/aussiebroadwan/spacehub/pkg/httpx"
	"github.com/aussiebroadwan/spacehub/pkg/slogx"
)

var errMalformedBody = errors.New("malformed_request")

type errorKind struct {
	err    error
	status int
	desc   string
}

// errorKinds is checked in order; the first match wins.
var errorKinds = []errorKind{
	{errMalformedBody, http.StatusBadRequest, "Request body is not valid JSON"},
	{service.ErrValidation, http.StatusUnprocessableEntity, "Request failed validation"},
	{service.ErrAuth, http.StatusUnauthorized, "Invalid credentials"},
	{service.ErrNotVerified, http.StatusUnauthorized, "Account is not verified, request a new code"},
	{service.ErrUnauthenticated, http.StatusUnauthorized, "Authentication required"},
	{service.ErrForbidden, http.StatusForbidden, "You do not have permission to perform this action"},
	{service.ErrNotFound, http.StatusNotFound, "Not found"},
	{service.ErrDuplicateAccount, http.StatusConflict, "An account with this email already exists"},
	{service.ErrConflict, http.StatusConflict, "The account was modified concurrently, retry"},
	{service.ErrExpired, http.StatusBadRequest, "The code or invitation has expired"},
	{service.ErrDelivery, http.StatusBadGateway, "Email could not be delivered"},
	{service.ErrBilling, http.StatusBadGateway, "Billing provider unavailable"},
}

// writeError is the single place service errors become HTTP responses.
// Unknown errors are logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, k := range errorKinds {
		if !errors.Is(err, k.err) {
			continue
		}

		body := httpx.ErrorBody{Error: k.err.Error(), ErrorDescription: k.desc}
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			body.Fields = verr.Fields
		}
		if k.err == service.ErrUnauthenticated {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		}
		httpx.WriteJSON(w, k.status, body)
		return
	}

	slogx.FromContext(r.Context()).Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"err", err,
	)
	httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
}

// decode reads a JSON body into v. Any decode failure is errMalformedBody.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := httpx.DecodeJSON(w, r, v); err != nil {
		slogx.FromContext(r.Context()).Debug("malformed request body", "err", err)
		return errMalformedBody
	}
	return nil
}
