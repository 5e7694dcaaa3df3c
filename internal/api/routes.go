// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-draw/internal/measure"
	"github.com/joeblew999/plat-draw/internal/route"
	"github.com/joeblew999/plat-draw/internal/session"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Sessions *session.Service
}

// Types

type SessionIDInput struct {
	ID string `path:"id" doc:"Session ID" example:"s1"`
}

type MeasurementIDInput struct {
	SessionIDInput
	MeasurementID string `path:"mid" doc:"Measurement ID" example:"m1"`
}

type SessionBody struct {
	ID string `json:"id" doc:"Session ID"`
}

type ModeBody struct {
	Mode    string `json:"mode" enum:"line,polygon,circle,great_circle,routing,select,edit" doc:"Draw mode to activate"`
	Profile string `json:"profile,omitempty" enum:",walking,bicycle,car" doc:"Transport profile for routing mode"`
}

// EventBody is one host input event: pointer coordinates are WGS84 lon/lat.
type EventBody struct {
	Type string  `json:"type" enum:"pointerdown,pointermove,pointerup,keyup" doc:"Event type"`
	Lng  float64 `json:"lng,omitempty" doc:"Pointer longitude"`
	Lat  float64 `json:"lat,omitempty" doc:"Pointer latitude"`
	Key  string  `json:"key,omitempty" doc:"Key name for keyup events" example:"Escape"`
}

type ViewportBody struct {
	Zoom float64 `json:"zoom" doc:"Map zoom level" example:"12"`
}

type StateBody struct {
	Mode     string      `json:"mode,omitempty" doc:"Active draw mode"`
	Selected string      `json:"selected,omitempty" doc:"Selected feature ID"`
	Handles  []orb.Point `json:"handles,omitempty" doc:"Draggable vertices of the active mode"`
}

type LabelsBody struct {
	Labels []measure.Label `json:"labels" doc:"Current measurement labels"`
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every REST route.
func (h *APIHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))

	huma.Post(api, "/api/v1/sessions", h.CreateSession, huma.OperationTags("sessions"))
	huma.Delete(api, "/api/v1/sessions/{id}", h.DeleteSession, huma.OperationTags("sessions"))
	huma.Get(api, "/api/v1/sessions/{id}/state", h.GetState, huma.OperationTags("sessions"))

	huma.Post(api, "/api/v1/sessions/{id}/mode", h.StartMode, huma.OperationTags("drawing"))
	huma.Delete(api, "/api/v1/sessions/{id}/mode", h.StopMode, huma.OperationTags("drawing"))
	huma.Post(api, "/api/v1/sessions/{id}/events", h.PostEvent, huma.OperationTags("drawing"))
	huma.Post(api, "/api/v1/sessions/{id}/viewport", h.PostViewport, huma.OperationTags("drawing"))

	huma.Get(api, "/api/v1/sessions/{id}/features", h.GetFeatures, huma.OperationTags("features"))
	huma.Get(api, "/api/v1/sessions/{id}/labels", h.GetLabels, huma.OperationTags("labels"))

	huma.Get(api, "/api/v1/sessions/{id}/measurements", h.GetMeasurements, huma.OperationTags("measurements"))
	huma.Post(api, "/api/v1/sessions/{id}/measurements", h.CreateMeasurement, huma.OperationTags("measurements"))
	huma.Put(api, "/api/v1/sessions/{id}/measurements/{mid}", h.PutMeasurement, huma.OperationTags("measurements"))
	huma.Delete(api, "/api/v1/sessions/{id}/measurements/{mid}", h.DeleteMeasurement, huma.OperationTags("measurements"))
}

func (h *APIHandler) session(id string) (*session.Session, error) {
	if h.svc == nil || h.svc.Sessions == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	sess, ok := h.svc.Sessions.Get(id)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}
	return sess, nil
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) CreateSession(ctx context.Context, input *struct{}) (*struct{ Body SessionBody }, error) {
	if h.svc == nil || h.svc.Sessions == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	sess := h.svc.Sessions.Create()
	return &struct{ Body SessionBody }{Body: SessionBody{ID: sess.ID}}, nil
}

func (h *APIHandler) DeleteSession(ctx context.Context, input *SessionIDInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Sessions == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	if err := h.svc.Sessions.Delete(input.ID); err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Session deleted"}}, nil
}

func (h *APIHandler) GetState(ctx context.Context, input *SessionIDInput) (*struct{ Body StateBody }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	return &struct{ Body StateBody }{Body: StateBody{
		Mode:     sess.ActiveMode(),
		Selected: sess.Selected(),
		Handles:  sess.Handles(),
	}}, nil
}

func (h *APIHandler) StartMode(ctx context.Context, input *struct {
	SessionIDInput
	Body ModeBody
}) (*struct{ Body MessageBody }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if err := sess.StartMode(input.Body.Mode, route.Profile(input.Body.Profile)); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Mode started"}}, nil
}

func (h *APIHandler) StopMode(ctx context.Context, input *struct {
	SessionIDInput
	Discard bool `query:"discard" doc:"Discard the in-progress feature instead of committing"`
}) (*struct{ Body MessageBody }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	sess.StopMode(!input.Discard)
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Mode stopped"}}, nil
}

func (h *APIHandler) PostEvent(ctx context.Context, input *struct {
	SessionIDInput
	Body EventBody
}) (*struct{ Body MessageBody }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	p := orb.Point{input.Body.Lng, input.Body.Lat}
	switch input.Body.Type {
	case "pointerdown":
		sess.PointerDown(p)
	case "pointermove":
		sess.PointerMove(p)
	case "pointerup":
		sess.PointerUp(p)
	case "keyup":
		sess.KeyUp(input.Body.Key)
	default:
		return nil, huma.Error400BadRequest("unknown event type")
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "ok"}}, nil
}

func (h *APIHandler) PostViewport(ctx context.Context, input *struct {
	SessionIDInput
	Body ViewportBody
}) (*struct{ Body MessageBody }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	sess.SetViewport(measure.Viewport{Zoom: input.Body.Zoom})
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "ok"}}, nil
}

func (h *APIHandler) GetFeatures(ctx context.Context, input *SessionIDInput) (*struct {
	Body *geojson.FeatureCollection
}, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	return &struct {
		Body *geojson.FeatureCollection
	}{Body: sess.Features()}, nil
}

func (h *APIHandler) GetLabels(ctx context.Context, input *SessionIDInput) (*struct{ Body LabelsBody }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	return &struct{ Body LabelsBody }{Body: LabelsBody{Labels: sess.Labels()}}, nil
}

func (h *APIHandler) GetMeasurements(ctx context.Context, input *SessionIDInput) (*struct {
	Body []measure.Measurement
}, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	return &struct {
		Body []measure.Measurement
	}{Body: sess.Measurements.List()}, nil
}

func (h *APIHandler) CreateMeasurement(ctx context.Context, input *struct {
	SessionIDInput
	Body measure.Measurement
}) (*struct{ Body measure.Measurement }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if _, ok := sess.Store.Get(input.Body.DrawFeatureID); !ok {
		return nil, huma.Error400BadRequest("drawFeatureId does not match a live feature")
	}
	created, err := sess.Measurements.Create(input.Body)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	sess.Engine.Poke()
	return &struct{ Body measure.Measurement }{Body: created}, nil
}

func (h *APIHandler) PutMeasurement(ctx context.Context, input *struct {
	MeasurementIDInput
	Body measure.Measurement
}) (*struct{ Body measure.Measurement }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	updated, err := sess.Measurements.Update(input.MeasurementID, input.Body)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	return &struct{ Body measure.Measurement }{Body: updated}, nil
}

func (h *APIHandler) DeleteMeasurement(ctx context.Context, input *MeasurementIDInput) (*struct{ Body MessageBody }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if err := sess.Measurements.Delete(input.MeasurementID); err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Measurement deleted"}}, nil
}
