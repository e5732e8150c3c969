package docs

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// The OpenAPI spec ships inside the binary, like the migrations, so serving
// it does not depend on the working directory.
//
//go:embed swagger.yaml
var specYAML []byte

// RegisterRoutes mounts the Swagger UI and the OpenAPI spec under /docs.
func RegisterRoutes(r chi.Router) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/index.html", http.StatusFound)
	})

	r.Get("/docs/swagger.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(specYAML)
	})

	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yaml"),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DeepLinking(true),
	))
}
