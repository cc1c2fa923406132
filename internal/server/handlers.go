// Package server provides the HTTP surface and the request pipeline for the
// gateway.
package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"modelgate/config"
	"modelgate/internal/core"
	"modelgate/internal/dialect"
	"modelgate/internal/observability"
	"modelgate/internal/relay"
	"modelgate/internal/selector"
)

// ownedBy is the owner reported for every group in the model listing.
const ownedBy = "modelgate"

// Handler holds the request pipeline dependencies.
type Handler struct {
	cfg      *config.Config
	selector *selector.Selector
	relay    *relay.Client
	metrics  *observability.Metrics
	verbose  bool
}

// NewHandler creates a handler over the given configuration registry,
// endpoint selector and relay client. metrics may be nil.
func NewHandler(cfg *config.Config, sel *selector.Selector, rl *relay.Client, metrics *observability.Metrics) *Handler {
	return &Handler{
		cfg:      cfg,
		selector: sel,
		relay:    rl,
		metrics:  metrics,
		verbose:  cfg.VerboseLog,
	}
}

// ChatCompletion handles POST /v1/chat/completions: detect the inbound
// dialect, normalize, resolve the model group to one endpoint, re-emit in the
// endpoint's dialect and relay the response back, buffered or as SSE.
func (h *Handler) ChatCompletion(c echo.Context) error {
	start := time.Now()
	groupLabel := "unknown"
	platformLabel := "unknown"
	status := http.StatusOK
	defer func() {
		h.metrics.ObserveRequest(groupLabel, platformLabel, strconv.Itoa(status), time.Since(start))
	}()

	fail := func(err error) error {
		status = http.StatusInternalServerError
		var gatewayErr *core.GatewayError
		if errors.As(err, &gatewayErr) {
			status = gatewayErr.HTTPStatusCode()
		}
		return handleError(c, err)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fail(core.NewBadRequestError("failed to read request body", err))
	}

	unified, format, err := dialect.Import(body)
	if err != nil {
		return fail(err)
	}
	if h.verbose {
		slog.Debug("inbound request", "format", format, "body", string(body))
	}

	if unified.Model == "" {
		return fail(core.NewBadRequestError("model is required", nil))
	}
	group, ok := h.cfg.GetGroupByName(unified.Model)
	if !ok {
		return fail(core.NewNotFoundError("model group not found: " + unified.Model))
	}
	groupLabel = group.Name
	if !group.Enabled {
		return fail(core.NewForbiddenError("model group is disabled: " + group.Name))
	}
	if len(group.Models) == 0 {
		return fail(core.NewUnavailableError("model group has no endpoints: " + group.Name))
	}

	endpoint := h.selector.Pick(group)
	unified.Model = endpoint.Name

	platform := dialect.DetectPlatform(endpoint.BaseURL, endpoint.Platform)
	platformLabel = string(platform)

	exported, err := dialect.Export(unified, platform)
	if err != nil {
		return fail(err)
	}
	if h.verbose {
		slog.Debug("exported request",
			"group", group.Name,
			"endpoint", endpoint.Name,
			"platform", platform,
			"body", string(exported),
		)
	}

	ctx := c.Request().Context()

	if dialect.IsStreamRequest(exported) {
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return fail(core.NewStreamingUnsupportedError())
		}

		upstream, err := h.relay.SendStream(ctx, endpoint.BaseURL, endpoint.APIKey, exported)
		if err != nil {
			return fail(err)
		}
		defer func() {
			_ = upstream.Close() //nolint:errcheck
		}()

		streamDone := h.metrics.StreamStarted()
		defer streamDone()

		header := c.Response().Header()
		header.Set("Content-Type", "text/event-stream")
		header.Set("Cache-Control", "no-cache")
		header.Set("Connection", "keep-alive")
		header.Set("X-Accel-Buffering", "no")
		c.Response().WriteHeader(http.StatusOK)

		// Past this point the client already holds a 200; failures can only
		// terminate the stream.
		if err := relay.ForwardSSE(c.Response().Writer, flusher, upstream); err != nil {
			slog.Warn("upstream stream ended with error", "group", group.Name, "error", err)
		}
		return nil
	}

	resp, err := h.relay.Send(ctx, endpoint.BaseURL, endpoint.APIKey, exported)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, resp)
}

// ListModels handles GET /v1/models. Every configured group appears as one
// model named by the group.
func (h *Handler) ListModels(c echo.Context) error {
	groups := h.cfg.GetGroups()
	models := make([]core.Model, 0, len(groups))
	for _, g := range groups {
		models = append(models, core.Model{
			ID:      g.Name,
			Object:  "model",
			Created: 0,
			OwnedBy: ownedBy,
		})
	}
	return c.JSON(http.StatusOK, core.ModelsResponse{Object: "list", Data: models})
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleError converts gateway errors to the flat client error body.
func handleError(c echo.Context, err error) error {
	var gatewayErr *core.GatewayError
	if errors.As(err, &gatewayErr) {
		return c.JSON(gatewayErr.HTTPStatusCode(), gatewayErr.ToJSON())
	}

	return c.JSON(http.StatusInternalServerError, map[string]any{
		"error": "an unexpected error occurred",
	})
}
