package presentation

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/usecases"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
	"github.com/sglre6355/venuevibe/internal/server"
)

const (
	maxSubmitBodyBytes  = 16 << 10
	maxWebhookBodyBytes = 64 << 10
)

// Handlers serves the jukebox HTTP API.
type Handlers struct {
	submissions *usecases.SubmissionService
	queue       *usecases.QueueService
}

// NewHandlers creates new Handlers.
func NewHandlers(submissions *usecases.SubmissionService, queue *usecases.QueueService) *Handlers {
	return &Handlers{
		submissions: submissions,
		queue:       queue,
	}
}

// HandleSubmit handles POST /submit.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBodyBytes))
	if err := dec.Decode(&req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Bid == nil {
		server.WriteError(w, http.StatusBadRequest, "bid is required")
		return
	}

	out, err := h.submissions.Submit(r.Context(), usecases.SubmitInput{
		TrackRef: req.URL,
		Bid:      *req.Bid,
	})
	if err != nil {
		status := submitErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to submit track", "error", err)
			server.WriteError(w, status, "internal server error")
			return
		}
		server.WriteError(w, status, err.Error())
		return
	}

	server.WriteJSON(w, http.StatusOK, submitResponse{
		CheckoutSessionID: out.CheckoutSessionID,
		CheckoutURL:       out.CheckoutURL,
		TrackID:           string(out.Track.ID),
		Title:             out.Track.Title,
	})
}

func submitErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidBid), errors.Is(err, usecases.ErrInvalidTrackRef):
		return http.StatusBadRequest
	case errors.Is(err, usecases.ErrResolveFailure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecases.ErrPaymentCreateFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleQueue handles GET /queue. Without page_size the whole queue is returned.
func (h *Handlers) HandleQueue(w http.ResponseWriter, r *http.Request) {
	input := usecases.QueueListInput{PageSize: -1}

	query := r.URL.Query()
	if v := query.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			server.WriteError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		input.Page = page
	}
	if v := query.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			server.WriteError(w, http.StatusBadRequest, "page_size must be a positive integer")
			return
		}
		input.PageSize = size
	}

	out, err := h.queue.List(r.Context(), input)
	if err != nil {
		slog.Error("failed to list queue", "error", err)
		server.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	server.WriteJSON(w, http.StatusOK, newQueueResponse(out))
}

// HandleNextSong handles GET /next-song.
func (h *Handlers) HandleNextSong(w http.ResponseWriter, r *http.Request) {
	out, ok, err := h.queue.PopNext(r.Context())
	if err != nil {
		slog.Error("failed to pop next track", "error", err)
		server.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		server.WriteJSON(w, http.StatusOK, messageResponse{Message: "Queue is empty"})
		return
	}

	server.WriteJSON(w, http.StatusOK, newEntryResponse(out.Entry, out.Track, 0))
}

// HandleStripeWebhook handles POST /webhook/stripe.
func (h *Handlers) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		server.WriteError(w, http.StatusBadRequest, "Webhook error: unreadable body")
		return
	}

	err = h.submissions.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case err == nil:
		server.WriteJSON(w, http.StatusOK, statusResponse{Status: "success"})
	case errors.Is(err, usecases.ErrWebhookSignatureInvalid):
		server.WriteError(w, http.StatusBadRequest, "Webhook error: "+err.Error())
	default:
		// A 5xx makes Stripe retry the delivery later.
		slog.Error("failed to handle webhook", "error", err)
		server.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HandleTestConfirm handles GET /test/confirm/{session_id}. It confirms a
// payment without a provider notification and is only routed when enabled.
func (h *Handlers) HandleTestConfirm(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	_, err := h.submissions.Confirm(r.Context(), sessionID)
	switch {
	case err == nil:
		server.WriteJSON(w, http.StatusOK, statusResponse{Status: "Song added to queue"})
	case errors.Is(err, usecases.ErrPaymentNotFound):
		server.WriteJSON(w, http.StatusNotFound, statusResponse{Status: "Failed to confirm: unknown session"})
	case errors.Is(err, usecases.ErrPaymentNotPending):
		server.WriteJSON(w, http.StatusConflict, statusResponse{Status: "Failed to confirm: already confirmed"})
	default:
		slog.Error("failed to confirm payment", "session", sessionID, "error", err)
		server.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
