package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/jewelry-admin/internal/drafts"
	"github.com/angelmondragon/jewelry-admin/internal/localcache"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
	"github.com/angelmondragon/jewelry-admin/pkg/metrics"
)

const (
	apiPrefix           = "/api/api"
	errorBodyReadLimit  = 4096
	entityPathProduct   = "product"
	entityPathMedia     = "media"
	contentTypeJSON     = "application/json"
	authorizationScheme = "Bearer "
)

// TokenSource yields the bearer token. It is consulted on every call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the shop backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	logg       *logger.Logger
	metrics    *metrics.PipelineMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets a client-wide timeout. Zero keeps the default of none.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a client rooted at baseURL.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "remote base url is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remote base url is invalid")
	}
	if tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "token source is required")
	}

	client := &Client{
		httpClient: &http.Client{},
		baseURL:    trimmed,
		tokens:     tokens,
		logg:       logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// HasRemote reports whether kind is persisted by the backend. Banners only live locally.
func HasRemote(kind enums.EntityKind) bool {
	_, ok := entityPath(kind)
	return ok
}

func entityPath(kind enums.EntityKind) (string, bool) {
	switch kind {
	case enums.EntityKindProduct:
		return entityPathProduct, true
	case enums.EntityKindMedia:
		return entityPathMedia, true
	}
	return "", false
}

// List fetches every entity of kind.
func (c *Client) List(ctx context.Context, kind enums.EntityKind) ([]localcache.Record, error) {
	path, err := c.pathFor(kind)
	if err != nil {
		return nil, err
	}
	op := path + ".all"
	body, err := c.do(ctx, op, http.MethodGet, c.buildURL(path, "all"), nil, "", false)
	if err != nil {
		return nil, err
	}
	records, err := localcache.DecodeList(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeRemoteCall, err, "decode remote list")
	}
	return records, nil
}

// Add submits a serialized draft as multipart form data and returns the created entity.
// A response that is not a JSON object yields an empty record; the call still succeeded.
func (c *Client) Add(ctx context.Context, form drafts.Form) (localcache.Record, error) {
	path, err := c.pathFor(form.Kind)
	if err != nil {
		return localcache.Record{}, err
	}
	payload, contentType, err := encodeMultipart(form)
	if err != nil {
		return localcache.Record{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build multipart body")
	}

	op := path + ".add"
	body, err := c.do(ctx, op, http.MethodPost, c.buildURL(path, "add"), payload, contentType, true)
	if err != nil {
		return localcache.Record{}, err
	}

	var created localcache.Record
	if err := json.Unmarshal(body, &created); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "operation", op), "remote add response was not a record")
		return localcache.Record{Fields: map[string]any{}}, nil
	}
	return created, nil
}

// Delete removes an entity remotely.
func (c *Client) Delete(ctx context.Context, kind enums.EntityKind, id string) error {
	path, err := c.pathFor(kind)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "id is required")
	}
	_, err = c.do(ctx, path+".delete", http.MethodDelete, c.buildURL(path, "delete", url.PathEscape(id)), nil, "", true)
	return err
}

// Login exchanges admin credentials for an access token. It does not need a token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(loginRequest{Email: email, Password: password, Admin: true})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal login request")
	}
	body, err := c.do(ctx, "user.login", http.MethodPost, c.buildURL("user", "login"), bytes.NewReader(payload), contentTypeJSON, false)
	if err != nil {
		return "", err
	}
	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeRemoteCall, err, "decode login response")
	}
	if resp.Status != "success" || resp.AccessToken == "" {
		message := resp.Message
		if message == "" {
			message = "invalid credentials"
		}
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, message)
	}
	return resp.AccessToken, nil
}

// Notifications lists header notifications.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	body, err := c.do(ctx, "notifications.list", http.MethodGet, c.buildURL("notifications"), nil, "", true)
	if err != nil {
		return nil, err
	}
	var out []Notification
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeRemoteCall, err, "decode notifications")
	}
	return out, nil
}

// MarkNotificationRead flags one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "id is required")
	}
	_, err := c.do(ctx, "notifications.read", http.MethodPut, c.buildURL("notifications", url.PathEscape(id), "read"), strings.NewReader("{}"), contentTypeJSON, true)
	return err
}

// TotalCustomers returns the customer count.
func (c *Client) TotalCustomers(ctx context.Context) (int64, error) {
	body, err := c.do(ctx, "user.total_customers", http.MethodGet, c.buildURL("user", "total-customers"), nil, "", true)
	if err != nil {
		return 0, err
	}
	var resp customersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeRemoteCall, err, "decode total customers")
	}
	return resp.TotalCustomers, nil
}

// TotalIncome returns the income figure from the first row the backend reports.
func (c *Client) TotalIncome(ctx context.Context) (IncomeTotal, error) {
	body, err := c.do(ctx, "order.total_income", http.MethodGet, c.buildURL("order", "total-income"), nil, "", true)
	if err != nil {
		return IncomeTotal{}, err
	}
	var rows []incomeRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return IncomeTotal{}, pkgerrors.Wrap(pkgerrors.CodeRemoteCall, err, "decode total income")
	}
	if len(rows) == 0 {
		return IncomeTotal{}, nil
	}
	return IncomeTotal{Amount: rows[0].TotalIncome}, nil
}

// MonthlySales returns the per-month sales series.
func (c *Client) MonthlySales(ctx context.Context) ([]MonthlySale, error) {
	body, err := c.do(ctx, "order.monthly_sales", http.MethodGet, c.buildURL("order", "monthly-sales"), nil, "", true)
	if err != nil {
		return nil, err
	}
	var out []MonthlySale
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeRemoteCall, err, "decode monthly sales")
	}
	return out, nil
}

// MostOrdered returns the products with the most orders, as ranked by the backend.
func (c *Client) MostOrdered(ctx context.Context) ([]PopularProduct, error) {
	body, err := c.do(ctx, "order.most_ordered", http.MethodGet, c.buildURL("order", "mostorder"), nil, "", true)
	if err != nil {
		return nil, err
	}
	var rows []mostOrderedRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeRemoteCall, err, "decode most ordered products")
	}
	out := make([]PopularProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.popular())
	}
	return out, nil
}

func (c *Client) pathFor(kind enums.EntityKind) (string, error) {
	path, ok := entityPath(kind)
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "entity kind has no remote endpoint").
			WithDetails(map[string]any{"kind": string(kind)})
	}
	return path, nil
}

func (c *Client) do(ctx context.Context, op, method, target string, body io.Reader, contentType string, authenticated bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+op+" request")
	}
	req.Header.Set("Accept", contentTypeJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authenticated {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", authorizationScheme+token)
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveRemote(op, time.Since(started))
	if err != nil {
		return nil, transportFailure(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		failure := callFailure(op, resp.StatusCode, msg)
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"operation":   op,
			"status":      resp.StatusCode,
			"remote_body": strings.TrimSpace(string(msg)),
		})
		c.logg.Error(logCtx, "remote call failed", failure)
		return nil, failure
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportFailure(op, err)
	}
	return payload, nil
}

func (c *Client) buildURL(parts ...string) string {
	return fmt.Sprintf("%s%s/%s", c.baseURL, apiPrefix, strings.Join(parts, "/"))
}

func encodeMultipart(form drafts.Form) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, field := range form.Fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", err
		}
	}
	for _, file := range form.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.FileName))
		contentType := file.MIME
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}
