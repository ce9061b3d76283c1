package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
)

const (
	DefaultEndpoint   = "http://localhost:52368/sse"
	DefaultMaxResults = 3
	DefaultToolName   = "visit_page"
	defaultTimeout    = 30 * time.Second
)

type Config struct {
	Endpoint    string        `split_words:"true" default:"http://localhost:52368/sse"`
	Origin      string        `split_words:"true" default:"https://www.amazon.com"`
	ProductPath string        `split_words:"true" default:"/dp/"`
	MaxResults  int           `split_words:"true" default:"3"`
	Timeout     time.Duration `split_words:"true" default:"30s"`
	ToolName    string        `split_words:"true" default:"visit_page"`
}

// TransportFactory builds a fresh transport for every search session.
type TransportFactory func(endpoint string, httpClient *http.Client) mcp.Transport

func SSETransport(endpoint string, httpClient *http.Client) mcp.Transport {
	return &mcp.SSEClientTransport{
		Endpoint:   endpoint,
		HTTPClient: httpClient,
	}
}

type Option func(*Client)

func WithTransport(factory TransportFactory) Option {
	return func(c *Client) {
		if factory != nil {
			c.transport = factory
		}
	}
}

func WithRunner(r Runner) Option {
	return func(c *Client) {
		if r != nil {
			c.runner = r
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// Client looks products up through a remote MCP page-fetch tool. No
// connection is reused: each search opens and closes its own session.
type Client struct {
	endpoint   string
	toolName   string
	maxResults int
	timeout    time.Duration

	extractor  *Extractor
	mcpClient  *mcp.Client
	transport  TransportFactory
	runner     Runner
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ contractx.Searcher = (*Client)(nil)

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	toolName := strings.TrimSpace(cfg.ToolName)
	if toolName == "" {
		toolName = DefaultToolName
	}
	maxResults := cfg.MaxResults
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults < 0 {
		return nil, fmt.Errorf("%w: max results must be >= 0", contractx.ErrValidation)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		endpoint:   endpoint,
		toolName:   toolName,
		maxResults: maxResults,
		timeout:    timeout,
		extractor:  NewExtractor(cfg.Origin, cfg.ProductPath),
		mcpClient: mcp.NewClient(&mcp.Implementation{
			Name:    "product-return-agent",
			Version: "v1.0.0",
		}, nil),
		transport:  SSETransport,
		runner:     DetachedRunner{},
		httpClient: &http.Client{},
		logger:     log.Logger,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Client) SearchURL(query string) string {
	return c.extractor.SearchURL(strings.TrimSpace(query))
}

// Search returns up to the configured number of product URLs. Any failure
// is logged and reported as an empty result.
func (c *Client) Search(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	urls, err := c.runner.Run(ctx, func(ctx context.Context) ([]string, error) {
		return c.fetch(ctx, query)
	})
	if err != nil {
		if !errors.Is(err, contractx.ErrSearchSoftFailure) {
			err = fmt.Errorf("%w: %v", contractx.ErrSearchSoftFailure, err)
		}
		c.logger.Warn().Err(err).Str("query", query).Str("endpoint", c.endpoint).Msg("marketplace search failed")
		return []string{}
	}

	c.logger.Debug().Str("query", query).Int("results", len(urls)).Msg("marketplace search finished")
	return urls
}

func (c *Client) fetch(ctx context.Context, query string) ([]string, error) {
	session, err := c.mcpClient.Connect(ctx, c.transport(c.endpoint, c.httpClient), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %v", contractx.ErrSearchSoftFailure, c.endpoint, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			c.logger.Debug().Err(cerr).Msg("close marketplace session")
		}
	}()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      c.toolName,
		Arguments: map[string]any{"url": c.SearchURL(query)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: call %s: %v", contractx.ErrSearchSoftFailure, c.toolName, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: empty %s result", contractx.ErrSearchSoftFailure, c.toolName)
	}
	if res.IsError {
		return nil, fmt.Errorf("%w: %s reported an error: %s", contractx.ErrSearchSoftFailure, c.toolName, firstText(res.Content))
	}

	text := firstText(res.Content)
	if text == "" {
		return nil, fmt.Errorf("%w: %s returned no text content", contractx.ErrSearchSoftFailure, c.toolName)
	}
	return c.extractor.Extract(text, c.maxResults), nil
}

// firstText returns the first text-bearing block, skipping images and
// other non-text content.
func firstText(blocks []mcp.Content) string {
	for _, block := range blocks {
		if tc, ok := block.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
