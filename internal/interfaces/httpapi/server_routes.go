package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/projections/{date}", handler.GetProjections)
	mux.HandleFunc("GET /v1/features/{date}", handler.GetFeatures)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/daily", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunDailyJob)))
	mux.Handle("POST /v1/internal/jobs/rebuild", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRebuildJob)))
}
