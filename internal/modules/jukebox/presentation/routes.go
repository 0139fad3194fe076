package presentation

import "net/http"

// RouteOptions controls which optional routes are exposed.
type RouteOptions struct {
	Limiter           *RateLimiter // nil disables submit rate limiting
	EnableTestConfirm bool
}

// Routes returns the jukebox handlers keyed by ServeMux pattern.
func Routes(h *Handlers, hub *StreamHub, opts RouteOptions) map[string]http.Handler {
	var submit http.Handler = http.HandlerFunc(h.HandleSubmit)
	if opts.Limiter != nil {
		submit = opts.Limiter.Middleware(submit)
	}

	routes := map[string]http.Handler{
		"POST /submit":         submit,
		"GET /queue":           http.HandlerFunc(h.HandleQueue),
		"GET /next-song":       http.HandlerFunc(h.HandleNextSong),
		"POST /webhook/stripe": http.HandlerFunc(h.HandleStripeWebhook),
	}
	if hub != nil {
		routes["GET /queue/stream"] = hub
	}
	if opts.EnableTestConfirm {
		routes["GET /test/confirm/{session_id}"] = http.HandlerFunc(h.HandleTestConfirm)
	}
	return routes
}
