package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"club-points-ledger/internal/apperr"
	"club-points-ledger/internal/auth"

	"github.com/shopspring/decimal"
)

type errorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	writeJSON(w, apperr.HTTPStatus(code), ErrorResponse{Error: errorBody{
		Code:    code,
		Message: apperr.MessageOf(err),
	}})
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.InvalidArgument, "invalid request body", err)
	}
	return nil
}

func requireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, apperr.Wrap(apperr.Unauthenticated, "authentication required", err))
				return
			}

			subject, err := auth.ParseTokenSubject(tokenString, secret)
			if err != nil {
				writeError(w, apperr.Wrap(apperr.Unauthenticated, "invalid token", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), subject)))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}

// integerDelta accepts any JSON number with an integral value that fits in int64.
func integerDelta(raw json.Number) (int64, error) {
	invalid := apperr.New(apperr.InvalidArgument, "delta must be an integer")
	if raw == "" {
		return 0, invalid
	}
	if n, err := raw.Int64(); err == nil {
		return n, nil
	}
	// Reject huge exponents before expanding them exactly.
	f, err := raw.Float64()
	if err != nil || math.IsInf(f, 0) || math.Abs(f) > 1<<63 {
		return 0, invalid
	}
	d, err := decimal.NewFromString(raw.String())
	if err != nil || !d.IsInteger() {
		return 0, invalid
	}
	n := d.BigInt()
	if !n.IsInt64() {
		return 0, invalid
	}
	return n.Int64(), nil
}

// boolField keeps only real booleans; any other JSON value is ignored.
func boolField(v any) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Newf(apperr.InvalidArgument, "%s must be an integer", name)
	}
	return n, nil
}
