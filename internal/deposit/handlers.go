package deposit

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zombor/palpa-deposit/internal/fault"
	"github.com/zombor/palpa-deposit/internal/locale"
)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes {"error": message} with the given status
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// requestLocale returns the locale argument of a request: the "locale" query
// parameter when present (an ordinal or a name), otherwise the best match for
// Accept-Language
func requestLocale(r *http.Request) any {
	q := r.URL.Query().Get("locale")
	if q == "" {
		return locale.FromAcceptLanguage(r.Header.Get("Accept-Language"))
	}
	if n, err := strconv.Atoi(q); err == nil {
		return n
	}
	return q
}

// handleGetDeposit looks up the deposit of the EAN in the path
func (s *Server) handleGetDeposit(w http.ResponseWriter, r *http.Request) {
	l, err := locale.Resolve(requestLocale(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := strconv.ParseUint(r.PathValue("ean"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, s.catalog.EANTypeError(l))
		return
	}

	rec, err := s.fetcher.Fetch(r.Context(), EAN(n), l)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			slog.Error("Deposit lookup failed", "ean", n, "locale", l.String(), "error", err)
			writeError(w, status, http.StatusText(status))
			return
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleHealth reports that the process is up
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// statusForError maps a lookup error to an HTTP status
func statusForError(err error) int {
	switch kind := fault.KindOf(err); {
	case errors.Is(kind, fault.TypeMismatch), errors.Is(kind, fault.InvalidArgument):
		return http.StatusBadRequest
	case errors.Is(kind, fault.InvalidEANInput):
		return http.StatusNotFound
	case errors.Is(kind, fault.ServiceProtocol):
		return http.StatusBadGateway
	default:
		return http.StatusGatewayTimeout
	}
}
