// Package httpadapter exposes the inspection and control API over hertz.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"wildcore/internal/app/observe"
	"wildcore/internal/app/ports"
	"wildcore/internal/app/status"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// WorldControl is what the API needs from the agent host.
type WorldControl interface {
	Spawn(ctx context.Context, profileKey string, x, y float64, interactive bool) (string, error)
	Despawn(ctx context.Context, agentID string) error
	IsFood(agentID, item string, original bool) bool
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

type Handler struct {
	ObserveUC observe.UseCase
	StatusUC  status.UseCase
	World     WorldControl
	KPI       kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api")
	api.GET("/status", h.status)
	api.POST("/agents", h.spawn)
	api.DELETE("/agents/:agent_id", h.despawn)
	api.GET("/agents/:agent_id/state", h.agentState)
	api.GET("/agents/:agent_id/events", h.agentEvents)
	api.POST("/agents/:agent_id/food-check", h.foodCheck)

	s.GET("/ops/kpi", h.kpi)
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type spawnRequest struct {
	ProfileKey  string  `json:"profile_key"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Interactive bool    `json:"interactive"`
}

func (h Handler) spawn(c context.Context, ctx *app.RequestContext) {
	var body spawnRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.ProfileKey == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_profile_key", "profile_key is required")
		return
	}

	agentID, err := h.World.Spawn(c, body.ProfileKey, body.X, body.Y, body.Interactive)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, map[string]string{"agent_id": agentID})
}

func (h Handler) despawn(c context.Context, ctx *app.RequestContext) {
	agentID := ctx.Param("agent_id")
	if err := h.World.Despawn(c, agentID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]string{"agent_id": agentID})
}

func (h Handler) agentState(c context.Context, ctx *app.RequestContext) {
	resp, err := h.ObserveUC.Execute(c, observe.Request{AgentID: ctx.Param("agent_id")})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) agentEvents(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	resp, err := h.ObserveUC.Events(c, observe.EventsRequest{
		AgentID: ctx.Param("agent_id"),
		Limit:   limit,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type foodCheckRequest struct {
	Item     string `json:"item"`
	Original bool   `json:"original"`
}

func (h Handler) foodCheck(c context.Context, ctx *app.RequestContext) {
	var body foodCheckRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.Item == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_item", "item is required")
		return
	}
	edible := h.World.IsFood(ctx.Param("agent_id"), body.Item, body.Original)
	ctx.JSON(consts.StatusOK, map[string]any{
		"item":   body.Item,
		"edible": edible,
	})
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, observe.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
