package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParseOptionalGte reads an optional integer query parameter that must be >= value.
// An absent parameter yields 0. On a malformed value a 400 is written and false returned.
func ParseOptionalGte(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, value int64) (int32, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || parsed < value {
		logger.WarnContext(r.Context(), "invalid query parameter", "key", key, "value", raw)
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, raw))
		return 0, false
	}
	return int32(parsed), true
}
