package presentation

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/usecases"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/infrastructure"
)

const testWebhookSecret = "whsec_presentation_test"

var testStart = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

// fakeResolver resolves refs from a fixed catalogue.
type fakeResolver struct {
	tracks map[string]*domain.Track
	err    error
}

func (r *fakeResolver) Resolve(_ context.Context, query *domain.TrackQuery) (*domain.Track, error) {
	if r.err != nil {
		return nil, r.err
	}
	track, ok := r.tracks[query.Query]
	if !ok {
		return nil, domain.ErrTrackNotFound
	}
	return track, nil
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{tracks: map[string]*domain.Track{
		"https://soundcloud.com/artist/one": {
			ID: "101", Title: "One", Artist: "Artist", Duration: 200 * time.Second, SourceName: "soundcloud",
		},
		"https://soundcloud.com/artist/two": {
			ID: "102", Title: "Two", Artist: "Artist", Duration: 185 * time.Second, SourceName: "soundcloud",
		},
	}}
}

type testEnv struct {
	clock       *clock.Mock
	queue       *infrastructure.MemoryQueue
	store       *infrastructure.SQLStore
	resolver    *fakeResolver
	submissions *usecases.SubmissionService
	queueSvc    *usecases.QueueService
	handler     http.Handler
}

type envOption func(*RouteOptions)

func withLimiter(l *RateLimiter) envOption {
	return func(o *RouteOptions) { o.Limiter = l }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	ctx := context.Background()

	clk := clock.NewMock()
	clk.Set(testStart)

	store, err := infrastructure.OpenStore(ctx, "sqlite::memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	queue := infrastructure.NewMemoryQueue(domain.TimeWeight(0.5), clk)
	gateway := infrastructure.NewStripeGateway(infrastructure.StripeConfig{
		WebhookSecret: testWebhookSecret,
	})
	resolver := newFakeResolver()

	submissions := usecases.NewSubmissionService(0, resolver, gateway, store, queue, nil, clk)
	queueSvc := usecases.NewQueueService(queue, store, nil, clk)

	routeOpts := RouteOptions{EnableTestConfirm: true}
	for _, opt := range opts {
		opt(&routeOpts)
	}

	mux := http.NewServeMux()
	for pattern, h := range Routes(NewHandlers(submissions, queueSvc), nil, routeOpts) {
		mux.Handle(pattern, h)
	}

	return &testEnv{
		clock:       clk,
		queue:       queue,
		store:       store,
		resolver:    resolver,
		submissions: submissions,
		queueSvc:    queueSvc,
		handler:     mux,
	}
}

func (e *testEnv) do(method, target string, body []byte, header http.Header) *httptest.ResponseRecorder {
	return e.doFrom("192.0.2.1:1234", method, target, body, header)
}

// doFrom sends a request whose socket peer is remoteAddr.
func (e *testEnv) doFrom(remoteAddr, method, target string, body []byte, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.RemoteAddr = remoteAddr
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// submitAndConfirm submits url with bid and confirms its payment.
func (e *testEnv) submitAndConfirm(t *testing.T, url string, bid float64) string {
	t.Helper()
	out, err := e.submissions.Submit(context.Background(), usecases.SubmitInput{TrackRef: url, Bid: bid})
	if err != nil {
		t.Fatalf("failed to submit: %v", err)
	}
	if _, err := e.submissions.Confirm(context.Background(), out.CheckoutSessionID); err != nil {
		t.Fatalf("failed to confirm: %v", err)
	}
	return out.CheckoutSessionID
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func checkoutEvent(eventType, sessionID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test",
		"object": "event",
		"type": %q,
		"data": {"object": {"id": %q, "object": "checkout.session", "payment_status": "paid"}}
	}`, eventType, sessionID))
}
