// Package api is the terminal client's HTTP binding to the SchemeSeva server.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/schemeseva/internal/models"
)

// ErrNotFound is returned when the server answers 404.
var ErrNotFound = errors.New("not found")

// Error is a non-2xx answer from the server.
type Error struct {
	Status     int
	Message    string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// Client calls the SchemeSeva API. Token, when set, supplies the bearer
// token for protected endpoints.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   func() string
}

// New returns a Client for baseURL using httpClient.
func New(baseURL string, httpClient *http.Client) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// NewHTTPClient returns an http.Client that trusts caFile in addition to the
// system roots. An empty caFile means the system roots only.
func NewHTTPClient(caFile string) (*http.Client, error) {
	if caFile == "" {
		return &http.Client{Timeout: 30 * time.Second}, nil
	}
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool, err := x509.SystemCertPool()
	if err != nil {
		caPool = x509.NewCertPool()
	}
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: caPool, MinVersion: tls.VersionTLS12},
	}
	return &http.Client{Transport: transport, Timeout: 30 * time.Second}, nil
}

// Schemes lists schemes. An empty category lists every scheme; query filters
// on title and description.
func (c *Client) Schemes(ctx context.Context, category, query string) ([]models.Scheme, error) {
	v := url.Values{}
	if category != "" {
		v.Set("category", category)
	}
	if query != "" {
		v.Set("q", query)
	}
	var out []models.Scheme
	if err := c.do(ctx, http.MethodGet, "/api/schemes", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Scheme fetches one scheme. A missing scheme yields ErrNotFound.
func (c *Client) Scheme(ctx context.Context, id string) (*models.Scheme, error) {
	var out models.Scheme
	if err := c.do(ctx, http.MethodGet, "/api/schemes/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories fetches the dashboard tiles.
func (c *Client) Categories(ctx context.Context) ([]models.CategoryTile, error) {
	var out []models.CategoryTile
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Token is a session issued by the server.
type Token struct {
	Token string `json:"token"`
	Phone string `json:"phone"`
}

// SendOTP asks the server to text a code to phone.
func (c *Client) SendOTP(ctx context.Context, phone string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/otp", nil, map[string]string{"phone": phone}, nil)
}

// VerifyOTP exchanges a code for a session.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (*Token, error) {
	var out Token
	err := c.do(ctx, http.MethodPost, "/api/auth/otp/verify", nil,
		map[string]string{"phone": phone, "code": code}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login signs in with a password.
func (c *Client) Login(ctx context.Context, phone, password string) (*Token, error) {
	var out Token
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		map[string]string{"phone": phone, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetPassword sets the password of the signed-in user.
func (c *Client) SetPassword(ctx context.Context, password, confirm string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/password", nil,
		map[string]string{"password": password, "confirm": confirm}, nil)
}

// Logout ends the current session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// Chat sends one user message to the relay and returns the reply.
func (c *Client) Chat(ctx context.Context, text string) (string, error) {
	req := models.ChatRequest{Messages: []models.ChatMessage{{Role: "user", Content: text}}}
	var out models.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", nil, req, &out); err != nil {
		return "", err
	}
	if out.Reply() == "" {
		return "", errors.New("empty reply")
	}
	return out.Reply(), nil
}

// Video is the explainer video found for a question.
type Video struct {
	Code     string        `json:"code"`
	Scheme   models.Scheme `json:"scheme"`
	VideoURL string        `json:"video_url"`
}

// FindVideo asks the server which scheme video answers query.
func (c *Client) FindVideo(ctx context.Context, query string) (*Video, error) {
	var out Video
	if err := c.do(ctx, http.MethodGet, "/api/videos/search", url.Values{"q": {query}}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != nil {
		if tok := c.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	e := &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	var env struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &env) == nil && env.Error != "" {
		e.Message = env.Error
	}
	if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
		e.RetryAfter = time.Duration(s) * time.Second
	}
	return e
}
