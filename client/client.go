package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultDebounce = 800 * time.Millisecond

// Client talks to the storefront API. It holds the current session and is
// safe for concurrent use.
type Client struct {
	baseURL  string
	httpc    *http.Client
	log      *zap.Logger
	debounce time.Duration

	mu      sync.RWMutex
	session *Session
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithDebounce overrides the quiescence window the cart syncer waits after
// the last mutation before pushing a save.
func WithDebounce(d time.Duration) Option {
	return func(c *Client) { c.debounce = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpc:    &http.Client{Timeout: 10 * time.Second},
		log:      zap.NewNop(),
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the current session, or nil when logged out.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// Logout discards the local credential. Server-side state is untouched; the
// pending cart stays where it is for the next login.
func (c *Client) Logout() {
	c.setSession(nil)
}

// Register creates an account and starts a session from the returned token.
func (c *Client) Register(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/api/register", email, password)
}

// Login verifies credentials and starts a session from the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/api/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*Session, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, path, body, &resp, false); err != nil {
		return nil, err
	}
	sess, err := SessionFromToken(resp.Token)
	if err != nil {
		return nil, err
	}
	c.setSession(sess)
	return sess, nil
}

// Products lists the catalog. Filtering by category or search term is the
// caller's concern.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &products, false); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct adds a catalog entry; requires an admin session.
func (c *Client) CreateProduct(ctx context.Context, p Product) (Product, error) {
	var created Product
	if err := c.do(ctx, http.MethodPost, "/api/products", p, &created, true); err != nil {
		return Product{}, err
	}
	return created, nil
}

// Orders returns the session user's completed orders, newest first.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	sess := c.Session()
	if !sess.Valid() {
		return nil, fmt.Errorf("%w: no active session", ErrUnauthorized)
	}
	var orders []Order
	path := "/api/orders/" + url.PathEscape(sess.UserID)
	if err := c.do(ctx, http.MethodGet, path, nil, &orders, true); err != nil {
		return nil, err
	}
	return orders, nil
}

// DeleteCartItem removes one item from the server-side pending cart and
// returns the remaining items.
func (c *Client) DeleteCartItem(ctx context.Context, productID string) ([]CartItem, error) {
	sess := c.Session()
	if !sess.Valid() {
		return nil, fmt.Errorf("%w: no active session", ErrUnauthorized)
	}
	var resp struct {
		Items []CartItem `json:"items"`
	}
	path := "/api/cart/" + url.PathEscape(sess.UserID) + "/item/" + url.PathEscape(productID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) getCart(ctx context.Context, userID string) ([]CartItem, error) {
	var resp struct {
		Items []CartItem `json:"items"`
	}
	path := "/api/cart/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) saveCart(ctx context.Context, userID string, items []CartItem) error {
	if items == nil {
		items = []CartItem{}
	}
	body := struct {
		Items []CartItem `json:"items"`
	}{Items: items}
	path := "/api/cart/" + url.PathEscape(userID)
	return c.do(ctx, http.MethodPost, path, body, nil, true)
}

func (c *Client) placeOrder(ctx context.Context, userID string, items []CartItem, total float64, delivery Delivery) (Order, error) {
	body := struct {
		UserID   string     `json:"userId"`
		Items    []CartItem `json:"items"`
		Total    float64    `json:"total"`
		Delivery Delivery   `json:"delivery"`
	}{UserID: userID, Items: items, Total: total, Delivery: delivery}

	var order Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", body, &order, true); err != nil {
		return Order{}, err
	}
	return order, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		sess := c.Session()
		if !sess.Valid() {
			return fmt.Errorf("%w: no active session", ErrUnauthorized)
		}
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil {
			apiErr.Message = errBody.Error
		}
		// The server rejected our credential; force re-authentication.
		if authed && resp.StatusCode == http.StatusUnauthorized {
			c.setSession(nil)
		}
		return apiErr
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
