package internode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/bnema/internode-usage-cli/internal/ports"
	"github.com/bnema/internode-usage-cli/internal/version"
	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 30 * time.Second
	maxResponseBytes = 4 << 20
)

// ErrResponseTooLarge is returned when a response body exceeds the read cap.
var ErrResponseTooLarge = errors.New("response exceeds the size limit")

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	UserAgent  string
	// DetectErrorBody turns an error/msg element in any response into an
	// *domain.APIError. Early API revisions did not send error bodies.
	DetectErrorBody bool
}

// Client issues authenticated GET requests against the account API.
type Client struct {
	baseURL         string
	creds           domain.Credentials
	httpClient      *http.Client
	userAgent       string
	detectErrorBody bool
	log             *zap.Logger
}

var _ ports.API = (*Client)(nil)

func NewClient(creds domain.Credentials, opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base url is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = UserAgent()
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		baseURL:         baseURL,
		creds:           creds,
		httpClient:      httpClient,
		userAgent:       userAgent,
		detectErrorBody: opts.DetectErrorBody,
		log:             log.Named("api"),
	}, nil
}

// UserAgent identifies the client, its runtime and the API revision.
func UserAgent() string {
	return fmt.Sprintf("internode-usage-cli/%s (%s, api/%s)", version.Version, runtime.Version(), version.APISpec)
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*etree.Element, error) {
	endpoint := c.endpoint(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.SetBasicAuth(c.creds.Username, c.creds.Password)
	request.Header.Set("User-Agent", c.userAgent)
	request.Header.Set("Accept", "application/xml, text/xml")

	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	c.log.Debug("api response",
		zap.String("path", "/"+strings.TrimLeft(path, "/")),
		zap.Int("status", response.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if response.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("GET /%s: %w", strings.TrimLeft(path, "/"), domain.ErrAuthentication)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("GET /%s: %w of %d bytes", strings.TrimLeft(path, "/"), ErrResponseTooLarge, maxResponseBytes)
	}

	// Error states may come back with any status and an XML body, so the
	// body is always parsed.
	root, err := parseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("%w: GET /%s (status %d): %v", domain.ErrSchema, strings.TrimLeft(path, "/"), response.StatusCode, err)
	}

	if c.detectErrorBody {
		if msg := findErrorMessage(root); msg != nil {
			return nil, &domain.APIError{Message: strings.TrimSpace(msg.Text())}
		}
	}

	return root, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func parseDocument(body []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, errors.New("response has no root element")
	}

	return root, nil
}

func findErrorMessage(root *etree.Element) *etree.Element {
	if root.Tag == "error" {
		return root.FindElement("msg")
	}

	return root.FindElement(".//error/msg")
}
