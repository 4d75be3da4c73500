package kit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouteLabel keeps metric label cardinality bounded: matched
// requests are labelled by pattern, unmatched ones collapse to "unmatched".
func RouteLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if rp := rctx.RoutePattern(); rp != "" {
			return rp
		}
	}
	return "unmatched"
}
