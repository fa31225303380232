package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diningwatch/internal/config"
	"diningwatch/internal/email"
	"diningwatch/internal/models"
)

type fakeSubStore struct {
	subscribeErr   error
	unsubscribeErr error
	removed        bool

	gotEmail    string
	gotKeywords []string
	gotHalls    []string
	created     bool
}

func (f *fakeSubStore) Subscribe(_ context.Context, addr string, keywords, halls []string) (*models.Subscription, bool, error) {
	if f.subscribeErr != nil {
		return nil, false, f.subscribeErr
	}
	f.gotEmail, f.gotKeywords, f.gotHalls = addr, keywords, halls
	return &models.Subscription{Email: addr, Keywords: keywords, Halls: halls}, f.created, nil
}

func (f *fakeSubStore) Unsubscribe(_ context.Context, addr string) (bool, error) {
	if f.unsubscribeErr != nil {
		return false, f.unsubscribeErr
	}
	f.gotEmail = addr
	return f.removed, nil
}

type fakeWelcomeMailer struct {
	enabled bool
	sent    int
}

func (f *fakeWelcomeMailer) IsEnabled() bool { return f.enabled }

func (f *fakeWelcomeMailer) SendAsync([]string, string, string, string) { f.sent++ }

func newTestApp(store *fakeSubStore, mailer *fakeWelcomeMailer, welcome bool) *fiber.App {
	cfg := &config.Config{SiteTitle: "Dining Watch", WelcomeEmailEnabled: welcome}
	halls := []models.Hall{
		{Name: "Simmons Hall", URL: "http://example.com/simmons"},
		{Name: "Baker House", URL: "http://example.com/baker"},
	}
	h := NewSubscriptionHandler(store, cfg, mailer, email.NewTemplates(cfg), halls)

	app := fiber.New()
	app.Post("/subscribe", h.Subscribe)
	app.Post("/unsubscribe", h.Unsubscribe)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, map[string]any) {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	return resp.StatusCode, payload
}

func TestSubscribe_Creates(t *testing.T) {
	store := &fakeSubStore{created: true}
	app := newTestApp(store, &fakeWelcomeMailer{}, false)

	status, payload := postJSON(t, app, "/subscribe", map[string]any{
		"email":    "Alice@Example.com ",
		"keywords": "shrimp, jalapeno poppers, shrimp",
		"halls":    []string{"Simmons Hall"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "alice@example.com", store.gotEmail, "email is normalized before storage")
	assert.Equal(t, []string{"shrimp", "jalapeno poppers"}, store.gotKeywords, "keywords are split and deduplicated")
	assert.Equal(t, []string{"Simmons Hall"}, store.gotHalls)

	data := payload["data"].(map[string]any)
	assert.Equal(t, true, data["created"])
}

func TestSubscribe_RejectsBadEmail(t *testing.T) {
	app := newTestApp(&fakeSubStore{}, &fakeWelcomeMailer{}, false)

	for _, addr := range []string{"", "not-an-email", "Alice <alice@example.com>"} {
		status, payload := postJSON(t, app, "/subscribe", map[string]any{
			"email":    addr,
			"keywords": "shrimp",
		})
		assert.Equal(t, fiber.StatusBadRequest, status, "email %q should be rejected", addr)
		assert.Equal(t, "error", payload["status"])
	}
}

func TestSubscribe_RequiresKeywords(t *testing.T) {
	app := newTestApp(&fakeSubStore{}, &fakeWelcomeMailer{}, false)

	status, _ := postJSON(t, app, "/subscribe", map[string]any{
		"email":    "alice@example.com",
		"keywords": " ,, ",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestSubscribe_RejectsUnknownHall(t *testing.T) {
	app := newTestApp(&fakeSubStore{}, &fakeWelcomeMailer{}, false)

	status, payload := postJSON(t, app, "/subscribe", map[string]any{
		"email":    "alice@example.com",
		"keywords": "shrimp",
		"halls":    []string{"Hogwarts Great Hall"},
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, payload["error"], "unknown hall")
}

func TestSubscribe_StoreFailure(t *testing.T) {
	store := &fakeSubStore{subscribeErr: errors.New("connection refused")}
	app := newTestApp(store, &fakeWelcomeMailer{}, false)

	status, _ := postJSON(t, app, "/subscribe", map[string]any{
		"email":    "alice@example.com",
		"keywords": "shrimp",
	})
	assert.Equal(t, fiber.StatusInternalServerError, status)
}

func TestSubscribe_WelcomeEmailOnlyOnCreate(t *testing.T) {
	tests := []struct {
		name     string
		created  bool
		welcome  bool
		enabled  bool
		wantSent int
	}{
		{"new subscription sends welcome", true, true, true, 1},
		{"merge sends nothing", false, true, true, 0},
		{"feature disabled", true, false, true, 0},
		{"mailer disabled", true, true, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeSubStore{created: tt.created}
			mailer := &fakeWelcomeMailer{enabled: tt.enabled}
			app := newTestApp(store, mailer, tt.welcome)

			status, _ := postJSON(t, app, "/subscribe", map[string]any{
				"email":    "alice@example.com",
				"keywords": "shrimp",
			})
			require.Equal(t, fiber.StatusOK, status)
			assert.Equal(t, tt.wantSent, mailer.sent)
		})
	}
}

func TestUnsubscribe_Removes(t *testing.T) {
	store := &fakeSubStore{removed: true}
	app := newTestApp(store, &fakeWelcomeMailer{}, false)

	status, payload := postJSON(t, app, "/unsubscribe", map[string]any{
		"email": "ALICE@example.com",
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "alice@example.com", store.gotEmail)
}

func TestUnsubscribe_NotFound(t *testing.T) {
	store := &fakeSubStore{removed: false}
	app := newTestApp(store, &fakeWelcomeMailer{}, false)

	status, _ := postJSON(t, app, "/unsubscribe", map[string]any{
		"email": "nobody@example.com",
	})
	assert.Equal(t, fiber.StatusNotFound, status)
}
