package server

import (
	"net/http"

	"github.com/Kotlang/summitGo/logger"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/improbable-eng/grpc-web/go/grpcweb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type route struct {
	method  string
	pattern string
	handler runtime.HandlerFunc
	admin   bool
}

func (a *Api) routes() []route {
	return []route{
		{http.MethodGet, "/healthz", a.healthz, false},

		{http.MethodPost, "/api/leads", a.createLead, false},
		{http.MethodGet, "/api/events", a.listEvents, false},
		{http.MethodGet, "/api/events/{id}", a.getEvent, false},
		{http.MethodPost, "/api/events/{id}/attendees", a.registerAttendee, false},

		{http.MethodPost, "/api/admin/session", a.createSession, false},
		{http.MethodGet, "/api/admin/leads", a.adminLeads, true},
		{http.MethodDelete, "/api/admin/leads/{id}", a.deleteLead, true},
		{http.MethodGet, "/api/admin/events", a.adminEvents, true},
		{http.MethodPost, "/api/admin/events", a.createEvent, true},
		{http.MethodDelete, "/api/admin/events/{id}", a.deleteEvent, true},
		{http.MethodPost, "/api/admin/events/image-upload-url", a.imageUploadUrl, true},
	}
}

// NewHandler builds the HTTP handler: JSON api routes, /metrics, and, when
// grpcServer is set, grpc-web calls forwarded to it.
func NewHandler(api *Api, grpcServer *grpc.Server, allowedOrigins []string) (http.Handler, error) {
	mux := runtime.NewServeMux()
	for _, rt := range api.routes() {
		h := rt.handler
		if rt.admin {
			h = api.requireAdmin(h)
		}
		if err := mux.HandlePath(rt.method, rt.pattern, instrument(rt.method, rt.pattern, h)); err != nil {
			return nil, err
		}
	}

	metricsHandler := promhttp.Handler()
	err := mux.HandlePath(http.MethodGet, "/metrics", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		metricsHandler.ServeHTTP(w, r)
	})
	if err != nil {
		return nil, err
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	rest := loggingMiddleware(corsHandler.Handler(mux))
	if grpcServer == nil {
		return rest, nil
	}

	wrappedGrpc := grpcweb.WrapServer(grpcServer, grpcweb.WithOriginFunc(originAllowed(allowedOrigins)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wrappedGrpc.IsGrpcWebRequest(r) || wrappedGrpc.IsAcceptableGrpcCorsRequest(r) {
			logger.Debug("grpc-web request", zap.String("path", r.URL.Path))
			wrappedGrpc.ServeHTTP(w, r)
			return
		}
		rest.ServeHTTP(w, r)
	}), nil
}

func originAllowed(allowedOrigins []string) func(string) bool {
	return func(origin string) bool {
		for _, allowed := range allowedOrigins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
		return false
	}
}
