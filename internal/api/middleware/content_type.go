package middleware

import (
	"mime"
	"net/http"
	"strings"

	"github.com/areaforecast/areaforecast/internal/api/models"
)

// ContentTypeJSON defaults the response Content-Type to application/json.
// Handlers that write problem documents override it.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects request bodies that are not JSON with 415.
// A missing Content-Type is accepted.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if ct := r.Header.Get("Content-Type"); ct != "" && !isJSON(ct) {
				problem := models.NewProblem(
					models.ProblemTypeUnsupportedMediaType,
					"Unsupported media type",
					http.StatusUnsupportedMediaType,
					GetRequestID(r.Context()),
				).WithDetail("Content-Type must be application/json").WithInstance(r.URL.Path)
				problem.Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// isJSON accepts application/json and structured +json types.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
