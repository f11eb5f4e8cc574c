package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows browser dashboards on allowedOrigins to read the API. Only GET
// and POST routes exist, and clients send no credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		// Spreadsheet downloads name their file in Content-Disposition
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	})

	return c.Handler
}
