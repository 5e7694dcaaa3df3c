package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	routingEndpoint string
}

func NewInfoHandler(routingEndpoint string) *InfoHandler {
	return &InfoHandler{routingEndpoint: routingEndpoint}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	Routing  string   `json:"routing" doc:"Routing backend endpoint"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:    "plat-draw",
		Version: "0.1.0",
		Routing: h.routingEndpoint,
		Features: []string{
			"line",
			"polygon",
			"circle",
			"great_circle",
			"routing",
			"measurements",
		},
	}}, nil
}
