// Package stream pushes live drawing state to the map renderer over
// Datastar SSE: a GeoJSON feature frame whenever the store changes and a
// label frame on every render tick.
package stream

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/joeblew999/plat-draw/internal/session"
)

// Handler streams session events to the renderer.
type Handler struct {
	sessions *session.Service
}

// NewHandler creates a stream handler.
func NewHandler(sessions *session.Service) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/sessions/{id}/stream", h.Stream,
		huma.OperationTags("stream"),
	)
}

type streamInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// Stream subscribes to the session bus and forwards feature and label
// frames until the client disconnects.
func (h *Handler) Stream(ctx context.Context, input *streamInput) (*huma.StreamResponse, error) {
	sess, ok := h.sessions.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}

	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			r, w := humago.Unwrap(humaCtx)
			sse := datastar.NewSSE(w, r)

			ch := sess.Bus.Subscribe()
			defer sess.Bus.Unsubscribe(ch)

			// Initial frame so a reconnecting client catches up.
			sse.MarshalAndPatchSignals(map[string]any{
				"features": sess.Features(),
			})

			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					switch ev.Resource {
					case "features":
						sse.MarshalAndPatchSignals(map[string]any{
							"features": sess.Features(),
						})
						if ev.Action == "completed" {
							sse.DispatchCustomEvent("feature-completed", map[string]any{
								"id": ev.ID,
							})
						}
					case "labels":
						sse.MarshalAndPatchSignals(map[string]any{
							"labels": ev.Data,
						})
					case "measurements":
						sse.DispatchCustomEvent("measurement-changed", map[string]any{
							"action": ev.Action,
							"id":     ev.ID,
						})
					}
				}
			}
		},
	}, nil
}
