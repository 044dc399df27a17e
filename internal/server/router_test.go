package server

import (
	"bytes"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestRouterSetsRequestID(t *testing.T) {
	app, _ := newTestApp(t)
	app.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString(RequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	reqID := resp.Header.Get("X-Request-ID")
	if reqID == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != reqID {
		t.Fatalf("handler saw request id %q, header has %q", string(body), reqID)
	}
}

func TestRouterKeepsIncomingRequestID(t *testing.T) {
	app, _ := newTestApp(t)
	app.Get("/ping", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if got := resp.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected incoming request id to be echoed, got %q", got)
	}
}

func TestRouterErrorHandlerReturnsJSON(t *testing.T) {
	app, hook := newTestApp(t)
	app.Get("/boom", func(c fiber.Ctx) error { return errors.New("disk on fire") })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte(`"internal_error"`)) {
		t.Fatalf("expected internal_error body, got %s", string(body))
	}

	found := false
	for _, entry := range hook.AllEntries() {
		if entry.Message == "request failed" && entry.Level == logrus.ErrorLevel {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected request failure to be logged")
	}
}

func TestRouterReturns404ForUnknownRoute(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 status, got %d", resp.StatusCode)
	}
}

func TestNewAppRejectsMissingLogger(t *testing.T) {
	if _, err := NewApp(AppOptions{ListenPort: 4000}); err == nil {
		t.Fatalf("expected error without logger")
	}
	logger, _ := test.NewNullLogger()
	if _, err := NewApp(AppOptions{Logger: logger}); err == nil {
		t.Fatalf("expected error for zero listen port")
	}
}

func newTestApp(t *testing.T) (*fiber.App, *test.Hook) {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	app, err := NewApp(AppOptions{Logger: logger, ListenPort: 4000})
	if err != nil {
		t.Fatalf("NewApp error: %v", err)
	}
	return app, hook
}
