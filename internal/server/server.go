package server

import (
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-draw/internal/api"
	"github.com/joeblew999/plat-draw/internal/api/stream"
	"github.com/joeblew999/plat-draw/internal/config"
	"github.com/joeblew999/plat-draw/internal/route"
	"github.com/joeblew999/plat-draw/internal/session"
)

// Config holds the server configuration.
type Config struct {
	Host   string
	Port   string
	Engine config.Config

	// Fetcher overrides the routing backend; nil builds an OSRM fetcher
	// from Engine.Routing.Endpoint.
	Fetcher route.Fetcher
}

// Server is the drawing engine HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	services *api.Services
}

// New creates a new drawing server.
func New(cfg Config) *Server {
	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-draw API", "1.0.0")
	humaConfig.Info.Description = "Interactive geometry drawing and measurement engine for web maps."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}

	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = route.NewOSRMFetcher(cfg.Engine.Routing.Endpoint)
	}

	services := &api.Services{
		Sessions: session.NewService(fetcher, cfg.Engine),
	}

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		services: services,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

func (s *Server) routes() {
	handler := api.NewAPIHandler(s.services)
	handler.RegisterRoutes(s.humaAPI)

	info := api.NewInfoHandler(s.config.Engine.Routing.Endpoint)
	info.RegisterRoutes(s.humaAPI)

	streamHandler := stream.NewHandler(s.services.Sessions)
	streamHandler.RegisterRoutes(s.humaAPI)
}
