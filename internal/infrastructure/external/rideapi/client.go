package rideapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"ride-hail-client/internal/domain/auth"

	"github.com/google/uuid"
)

const (
	refreshPath     = "/token/refresh/"
	requestIDHeader = "X-Request-ID"
)

// Client 對後端 API 的已驗證連線。
// 每個請求附帶目前的 access token；遇到 401 時換發一次並重放原請求一次。
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    auth.SessionStore
	metrics    *Metrics
	newID      func() string
}

// Option 調整 Client 設定。
type Option func(*Client)

// WithHTTPClient 替換底層 http.Client（測試用）。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics 掛上 prometheus 指標。
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient 建立 Client；baseURL 例如 http://10.0.2.2:8000/api。
func NewClient(baseURL string, timeout time.Duration, session auth.SessionStore, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		session:    session,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request 一次邏輯請求。retried 在第一次 401 後設定，同一請求永遠不會換發兩次。
type Request struct {
	Op       string
	Method   string
	Path     string
	Body     any
	Public   bool
	Fallback string

	retried   bool
	payload   []byte
	requestID string
}

// Retried 回傳此請求是否已經走過換發流程。
func (r *Request) Retried() bool { return r.retried }

// Response 2xx 回應內容。
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode 將 body 解析到 out。
func (r *Response) Decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Do 送出請求。非 2xx 以 *APIError 回傳。
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := c.prepare(req); err != nil {
		return nil, err
	}

	var access string
	if !req.Public {
		pair, err := c.currentPair(ctx)
		if err != nil && !errors.Is(err, auth.ErrNoSession) {
			return nil, err
		}
		access = pair.Access
	}

	resp, err := c.send(ctx, req, access)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusUnauthorized || req.Public || req.retried {
		return c.check(req, resp)
	}

	// 先標記再嘗試，避免任何重試迴圈。
	req.retried = true
	original := parseError(req.Op, resp.Status, resp.Body, req.Fallback)

	pair, err := c.currentPair(ctx)
	if err != nil {
		return nil, original
	}

	newAccess, err := c.renew(ctx, pair.Refresh)
	if err != nil {
		log.Printf("[Session] token renewal failed for %s: %v", req.Op, err)
		c.metrics.renewal("failure")
		c.teardown(ctx)
		return nil, fmt.Errorf("%w: %w", ErrAuthRejected, original)
	}
	c.metrics.renewal("success")
	if err := c.session.SaveTokens(ctx, pair.WithAccess(newAccess)); err != nil {
		return nil, fmt.Errorf("save renewed token: %w", err)
	}

	resp, err = c.send(ctx, req, newAccess)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusUnauthorized {
		log.Printf("[Session] %s still unauthorized after renewal, ending session", req.Op)
		c.teardown(ctx)
		return nil, fmt.Errorf("%w: %w", ErrAuthRejected, parseError(req.Op, resp.Status, resp.Body, req.Fallback))
	}
	return c.check(req, resp)
}

// call 是 Do 加上 JSON 解碼的捷徑。
func (c *Client) call(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func (c *Client) prepare(req *Request) error {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if req.Op == "" {
		req.Op = req.Method + " " + req.Path
	}
	if req.requestID == "" {
		req.requestID = c.newID()
	}
	if req.Body != nil && req.payload == nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", req.Op, err)
		}
		req.payload = b
	}
	return nil
}

func (c *Client) currentPair(ctx context.Context) (auth.CredentialPair, error) {
	if c.session == nil {
		return auth.CredentialPair{}, auth.ErrNoSession
	}
	pair, err := c.session.LoadTokens(ctx)
	if err != nil {
		return auth.CredentialPair{}, err
	}
	if !pair.Complete() {
		return auth.CredentialPair{}, auth.ErrNoSession
	}
	return pair, nil
}

func (c *Client) send(ctx context.Context, req *Request, access string) (*Response, error) {
	var body io.Reader
	if req.payload != nil {
		body = bytes.NewReader(req.payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", req.Op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(requestIDHeader, req.requestID)
	if access != "" {
		httpReq.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.request(req.Op, "transport_error")
		return nil, &TransportError{Op: req.Op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.request(req.Op, "transport_error")
		return nil, &TransportError{Op: req.Op, Err: err}
	}
	c.metrics.request(req.Op, fmt.Sprintf("%d", resp.StatusCode))
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

func (c *Client) check(req *Request, resp *Response) (*Response, error) {
	if resp.Status >= 200 && resp.Status < 300 {
		return resp, nil
	}
	return nil, parseError(req.Op, resp.Status, resp.Body, req.Fallback)
}

// renew 直接呼叫換發端點，不附帶 access、也不會再觸發換發。
func (c *Client) renew(ctx context.Context, refresh string) (string, error) {
	req := &Request{
		Op:       "refresh token",
		Method:   http.MethodPost,
		Path:     refreshPath,
		Body:     map[string]string{"refresh": refresh},
		Public:   true,
		Fallback: "Eroare la reîmprospătarea token-ului",
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := c.call(ctx, req, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", errors.New("refresh response missing access token")
	}
	return out.Access, nil
}

func (c *Client) teardown(ctx context.Context) {
	if c.session == nil {
		return
	}
	// 呼叫端的 ctx 可能已取消，清除 session 不應因此失敗。
	if err := c.session.Clear(context.WithoutCancel(ctx)); err != nil {
		log.Printf("[Session] clear session failed: %v", err)
	}
}
