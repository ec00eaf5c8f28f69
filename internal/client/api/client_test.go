package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/schemeseva/internal/models"
)

// roundTripperFunc lets a test stand in for the server.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripperFunc) *Client {
	return New("http://example.com/", &http.Client{Transport: fn, Timeout: time.Second})
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestSchemes_QueryAndDecode(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/schemes" {
			t.Errorf("unexpected path %q", req.URL.Path)
		}
		if got := req.URL.Query().Get("category"); got != "Health" {
			t.Errorf("category = %q", got)
		}
		if got := req.URL.Query().Get("q"); got != "card" {
			t.Errorf("q = %q", got)
		}
		return respond(http.StatusOK, `[{"id":"1","title":"Ayushman Card","category":"Health & Wellness"}]`), nil
	})

	schemes, err := c.Schemes(context.Background(), "Health", "card")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schemes) != 1 || schemes[0].Title != "Ayushman Card" {
		t.Errorf("unexpected schemes %+v", schemes)
	}
}

func TestScheme_NotFound(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusNotFound, `{"error":"scheme not found"}`), nil
	})
	_, err := c.Scheme(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLogin_TooManyAttempts(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		resp := respond(http.StatusTooManyRequests, `{"error":"too many attempts, try again in 21 seconds"}`)
		resp.Header.Set("Retry-After", "21")
		return resp, nil
	})
	_, err := c.Login(context.Background(), "9876543210", "secret1")

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusTooManyRequests || apiErr.RetryAfter != 21*time.Second {
		t.Errorf("unexpected error %+v", apiErr)
	}
	if !strings.Contains(apiErr.Message, "21 seconds") {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestError_PlainText(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusInternalServerError, "Error fetching response\n"), nil
	})
	_, err := c.Chat(context.Background(), "hello")

	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Message != "Error fetching response" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestChat_SendsSingleUserMessage(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Content-Type") != "application/json" {
			t.Errorf("missing JSON content type")
		}
		var body models.ChatRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Messages) != 1 || body.Messages[0].Role != "user" || body.Messages[0].Content != "hello" {
			t.Errorf("unexpected request %+v", body)
		}
		return respond(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"Hi!"}}]}`), nil
	})

	reply, err := c.Chat(context.Background(), "hello")
	if err != nil || reply != "Hi!" {
		t.Errorf("reply = %q, err = %v", reply, err)
	}
}

func TestChat_EmptyReply(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, `{"choices":[]}`), nil
	})
	if _, err := c.Chat(context.Background(), "hello"); err == nil {
		t.Error("expected an error for an empty reply")
	}
}

func TestProtectedCallsSendToken(t *testing.T) {
	var got string
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		got = req.Header.Get("Authorization")
		return respond(http.StatusNoContent, ""), nil
	})
	c.Token = func() string { return "tok" }

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Bearer tok" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestNetworkError(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("network down")
	})
	_, err := c.Categories(context.Background())
	if err == nil || !strings.Contains(err.Error(), "network down") {
		t.Errorf("expected network failure, got %v", err)
	}
}

func TestInvalidJSON(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "not-json"), nil
	})
	_, err := c.Categories(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("expected decode failure, got %v", err)
	}
}

func TestNewHTTPClient(t *testing.T) {
	if _, err := NewHTTPClient(""); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := NewHTTPClient("/does/not/exist.crt"); err == nil {
		t.Error("expected an error for a missing CA file")
	}
}
