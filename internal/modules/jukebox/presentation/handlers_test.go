package presentation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/usecases"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/infrastructure"
	"github.com/sglre6355/venuevibe/internal/server"
)

const (
	urlOne = "https://soundcloud.com/artist/one"
	urlTwo = "https://soundcloud.com/artist/two"
)

func TestHandleSubmit(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{name: "valid submission", body: `{"url":"` + urlOne + `","bid":5}`, expectedStatus: http.StatusOK},
		{name: "zero bid", body: `{"url":"` + urlOne + `","bid":0}`, expectedStatus: http.StatusOK},
		{name: "negative bid", body: `{"url":"` + urlOne + `","bid":-1}`, expectedStatus: http.StatusBadRequest},
		{name: "huge bid", body: `{"url":"` + urlOne + `","bid":1e300}`, expectedStatus: http.StatusBadRequest},
		{name: "missing bid", body: `{"url":"` + urlOne + `"}`, expectedStatus: http.StatusBadRequest},
		{name: "empty url", body: `{"url":"  ","bid":1}`, expectedStatus: http.StatusBadRequest},
		{name: "malformed body", body: `{"url":`, expectedStatus: http.StatusBadRequest},
		{name: "unresolvable track", body: `{"url":"https://soundcloud.com/nobody/none","bid":1}`, expectedStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(http.MethodPost, "/submit", []byte(tt.body), nil)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedStatus != http.StatusOK {
				body := decodeBody[server.ErrorResponse](t, rec)
				if body.Detail == "" {
					t.Error("expected error detail")
				}
				return
			}

			body := decodeBody[submitResponse](t, rec)
			if !strings.HasPrefix(body.CheckoutSessionID, infrastructure.MockSessionPrefix) {
				t.Errorf("expected mock session id, got %q", body.CheckoutSessionID)
			}
			if body.TrackID != "101" {
				t.Errorf("expected track 101, got %q", body.TrackID)
			}
			if env.queue.Len() != 0 {
				t.Errorf("expected nothing queued before payment, got %d", env.queue.Len())
			}

			sub, err := env.store.GetByPaymentSession(context.Background(), body.CheckoutSessionID)
			if err != nil {
				t.Fatalf("expected pending submission, got %v", err)
			}
			if sub.Status != domain.SubmissionPending {
				t.Errorf("expected pending, got %s", sub.Status)
			}
		})
	}
}

func TestSubmitErrorStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{err: domain.ErrInvalidBid, expected: http.StatusBadRequest},
		{err: usecases.ErrInvalidTrackRef, expected: http.StatusBadRequest},
		{err: fmt.Errorf("%w: %w", usecases.ErrResolveFailure, domain.ErrTrackNotFound), expected: http.StatusUnprocessableEntity},
		{err: fmt.Errorf("%w: timeout", usecases.ErrPaymentCreateFailure), expected: http.StatusBadGateway},
		{err: errors.New("disk full"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := submitErrorStatus(tt.err); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestHandleQueue_WaitTimeOvertakesHigherBid(t *testing.T) {
	env := newTestEnv(t)

	env.submitAndConfirm(t, urlOne, 10)
	env.clock.Add(2 * time.Second)
	env.submitAndConfirm(t, urlTwo, 10.5)

	rec := env.do(http.MethodGet, "/queue", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody[queueResponse](t, rec)
	if body.Total != 2 || len(body.Entries) != 2 {
		t.Fatalf("expected 2 entries, got total=%d len=%d", body.Total, len(body.Entries))
	}

	first, second := body.Entries[0], body.Entries[1]
	if first.TrackID != "101" || second.TrackID != "102" {
		t.Errorf("expected order [101 102], got [%s %s]", first.TrackID, second.TrackID)
	}
	if first.Position != 1 || second.Position != 2 {
		t.Errorf("expected positions 1 and 2, got %d and %d", first.Position, second.Position)
	}
	if first.FinalScore != 11 {
		t.Errorf("expected score 11, got %v", first.FinalScore)
	}
	if first.WaitTime != 2 {
		t.Errorf("expected wait time 2s, got %v", first.WaitTime)
	}
	if first.Title != "One" || first.Duration != "03:20" {
		t.Errorf("expected track metadata, got title=%q duration=%q", first.Title, first.Duration)
	}
}

func TestHandleQueue_Pagination(t *testing.T) {
	env := newTestEnv(t)
	env.submitAndConfirm(t, urlOne, 10)
	env.submitAndConfirm(t, urlTwo, 5)

	tests := []struct {
		name           string
		target         string
		expectedStatus int
		expectedIDs    []string
		expectedPage   int
		expectedPages  int
	}{
		{name: "whole queue", target: "/queue", expectedStatus: http.StatusOK, expectedIDs: []string{"101", "102"}, expectedPage: 1, expectedPages: 1},
		{name: "second page", target: "/queue?page=2&page_size=1", expectedStatus: http.StatusOK, expectedIDs: []string{"102"}, expectedPage: 2, expectedPages: 2},
		{name: "page past the end is clamped", target: "/queue?page=9&page_size=1", expectedStatus: http.StatusOK, expectedIDs: []string{"102"}, expectedPage: 2, expectedPages: 2},
		{name: "invalid page", target: "/queue?page=zero", expectedStatus: http.StatusBadRequest},
		{name: "invalid page size", target: "/queue?page_size=0", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, tt.target, nil, nil)
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			body := decodeBody[queueResponse](t, rec)
			if len(body.Entries) != len(tt.expectedIDs) {
				t.Fatalf("expected %d entries, got %d", len(tt.expectedIDs), len(body.Entries))
			}
			for i, id := range tt.expectedIDs {
				if body.Entries[i].TrackID != id {
					t.Errorf("entry %d: expected %s, got %s", i, id, body.Entries[i].TrackID)
				}
			}
			if body.Page != tt.expectedPage || body.TotalPages != tt.expectedPages {
				t.Errorf("expected page %d/%d, got %d/%d",
					tt.expectedPage, tt.expectedPages, body.Page, body.TotalPages)
			}
		})
	}
}

func TestHandleQueue_EmptyListsNoEntries(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/queue", nil, nil)

	if !strings.Contains(rec.Body.String(), `"entries":[]`) {
		t.Errorf("expected empty entries array, got %s", rec.Body.String())
	}
}

func TestHandleNextSong(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/next-song", nil, nil)
	if msg := decodeBody[messageResponse](t, rec); msg.Message != "Queue is empty" {
		t.Fatalf("expected empty queue message, got %q", msg.Message)
	}

	session := env.submitAndConfirm(t, urlTwo, 3)
	env.submitAndConfirm(t, urlOne, 7)
	env.clock.Add(4 * time.Second)

	rec = env.do(http.MethodGet, "/next-song", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	entry := decodeBody[entryResponse](t, rec)
	if entry.TrackID != "101" {
		t.Errorf("expected highest bid first, got %s", entry.TrackID)
	}
	if entry.WaitTime != 4 || entry.FinalScore != 9 {
		t.Errorf("expected wait 4 and score 9, got wait %v score %v", entry.WaitTime, entry.FinalScore)
	}

	rec = env.do(http.MethodGet, "/next-song", nil, nil)
	if entry := decodeBody[entryResponse](t, rec); entry.TrackID != "102" {
		t.Errorf("expected 102 next, got %s", entry.TrackID)
	}
	if env.queue.Len() != 0 {
		t.Errorf("expected empty queue, got %d", env.queue.Len())
	}

	sub, err := env.store.GetByPaymentSession(context.Background(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Status != domain.SubmissionPlayed {
		t.Errorf("expected played, got %s", sub.Status)
	}
}

func TestHandleStripeWebhook(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.submissions.Submit(context.Background(), usecases.SubmitInput{TrackRef: urlOne, Bid: 4})
	if err != nil {
		t.Fatalf("failed to submit: %v", err)
	}
	payload := checkoutEvent("checkout.session.completed", out.CheckoutSessionID)

	send := func(payload []byte, signature string) (int, string) {
		header := http.Header{"Stripe-Signature": {signature}}
		rec := env.do(http.MethodPost, "/webhook/stripe", payload, header)
		return rec.Code, rec.Body.String()
	}

	status, body := send(payload, "t=1,v1=deadbeef")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad signature, got %d", status)
	}
	if !strings.Contains(body, "Webhook error:") {
		t.Errorf("expected webhook error detail, got %s", body)
	}
	if env.queue.Len() != 0 {
		t.Fatalf("expected nothing queued, got %d", env.queue.Len())
	}

	signature := signPayload(payload, testWebhookSecret, time.Now())
	status, body = send(payload, signature)
	if status != http.StatusOK || !strings.Contains(body, `"success"`) {
		t.Fatalf("expected success, got %d %s", status, body)
	}
	if env.queue.Len() != 1 {
		t.Fatalf("expected one queued entry, got %d", env.queue.Len())
	}

	// Replayed delivery is acknowledged without queueing twice.
	status, _ = send(payload, signature)
	if status != http.StatusOK {
		t.Errorf("expected replay to succeed, got %d", status)
	}
	if env.queue.Len() != 1 {
		t.Errorf("expected one queued entry after replay, got %d", env.queue.Len())
	}
}

func TestHandleStripeWebhook_Expired(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.submissions.Submit(context.Background(), usecases.SubmitInput{TrackRef: urlOne, Bid: 4})
	if err != nil {
		t.Fatalf("failed to submit: %v", err)
	}
	payload := checkoutEvent("checkout.session.expired", out.CheckoutSessionID)
	header := http.Header{"Stripe-Signature": {signPayload(payload, testWebhookSecret, time.Now())}}

	rec := env.do(http.MethodPost, "/webhook/stripe", payload, header)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	sub, err := env.store.GetByPaymentSession(context.Background(), out.CheckoutSessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Status != domain.SubmissionFailed {
		t.Errorf("expected failed, got %s", sub.Status)
	}
}

func TestHandleTestConfirm(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.submissions.Submit(context.Background(), usecases.SubmitInput{TrackRef: urlOne, Bid: 2})
	if err != nil {
		t.Fatalf("failed to submit: %v", err)
	}

	tests := []struct {
		name           string
		sessionID      string
		expectedStatus int
		expectedBody   string
	}{
		{name: "pending session", sessionID: out.CheckoutSessionID, expectedStatus: http.StatusOK, expectedBody: "Song added to queue"},
		{name: "already confirmed", sessionID: out.CheckoutSessionID, expectedStatus: http.StatusConflict, expectedBody: "already confirmed"},
		{name: "unknown session", sessionID: "mock_session_missing", expectedStatus: http.StatusNotFound, expectedBody: "unknown session"},
	}

	// Cases share the environment and run in order.
	for _, tt := range tests {
		rec := env.do(http.MethodGet, "/test/confirm/"+tt.sessionID, nil, nil)
		if rec.Code != tt.expectedStatus {
			t.Errorf("%s: expected status %d, got %d", tt.name, tt.expectedStatus, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tt.expectedBody) {
			t.Errorf("%s: expected body to contain %q, got %s", tt.name, tt.expectedBody, rec.Body.String())
		}
	}

	if env.queue.Len() != 1 {
		t.Errorf("expected one queued entry, got %d", env.queue.Len())
	}
}

func TestRoutes_TestConfirmDisabled(t *testing.T) {
	routes := Routes(&Handlers{}, nil, RouteOptions{})

	if _, ok := routes["GET /test/confirm/{session_id}"]; ok {
		t.Error("expected test confirm route to be absent")
	}
	if _, ok := routes["GET /queue/stream"]; ok {
		t.Error("expected stream route to be absent without a hub")
	}
	if len(routes) != 4 {
		t.Errorf("expected 4 routes, got %d", len(routes))
	}
}
