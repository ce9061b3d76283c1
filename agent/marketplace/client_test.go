package marketplace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

type visitPageArgs struct {
	URL string `json:"url"`
}

type fakePageServer struct {
	mu       sync.Mutex
	visited  []string
	sessions int
	handler  func(ctx context.Context, url string) (*mcp.CallToolResult, error)

	serverSessions []*mcp.ServerSession
}

func (f *fakePageServer) visits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.visited)
}

// transport connects a fresh in-memory server for every search session.
func (f *fakePageServer) transport(t *testing.T) TransportFactory {
	t.Helper()
	return func(string, *http.Client) mcp.Transport {
		server := mcp.NewServer(&mcp.Implementation{Name: "fake-browser", Version: "v0.0.1"}, nil)
		mcp.AddTool(server, &mcp.Tool{Name: "visit_page", Description: "fetch a page as markdown"},
			func(ctx context.Context, _ *mcp.CallToolRequest, args visitPageArgs) (*mcp.CallToolResult, any, error) {
				f.mu.Lock()
				f.visited = append(f.visited, args.URL)
				f.mu.Unlock()
				res, err := f.handler(ctx, args.URL)
				return res, nil, err
			})

		serverTransport, clientTransport := mcp.NewInMemoryTransports()
		ss, err := server.Connect(context.Background(), serverTransport, nil)
		if err != nil {
			t.Errorf("server connect: %v", err)
		}
		f.mu.Lock()
		f.sessions++
		if ss != nil {
			f.serverSessions = append(f.serverSessions, ss)
		}
		f.mu.Unlock()
		return clientTransport
	}
}

// assertClosed fails unless every session the client opened has been
// shut down from the client side.
func (f *fakePageServer) assertClosed(t *testing.T) {
	t.Helper()

	f.mu.Lock()
	sessions := slices.Clone(f.serverSessions)
	f.mu.Unlock()
	if len(sessions) == 0 {
		t.Fatal("no session was opened")
	}

	for i, ss := range sessions {
		done := make(chan struct{})
		go func() {
			_ = ss.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("session %d was left open", i)
		}
	}
}

func newTestClient(t *testing.T, cfg Config, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	c, err := NewClient(cfg, opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func TestSearchExtractsLinks(t *testing.T) {
	t.Parallel()

	page := &fakePageServer{
		handler: func(context.Context, string) (*mcp.CallToolResult, error) {
			return textResult("# Results\n[Bowl](/dp/B01) [Bowl](/dp/B01) [Bag](/dp/B02) [Can](/dp/B03) [Box](/dp/B04)"), nil
		},
	}
	c := newTestClient(t, Config{}, WithTransport(page.transport(t)))

	got := c.Search(context.Background(), "dog food")
	want := []string{
		"https://www.amazon.com/dp/B01",
		"https://www.amazon.com/dp/B02",
		"https://www.amazon.com/dp/B03",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("Search() = %v, want %v", got, want)
	}
	if visits := page.visits(); !slices.Equal(visits, []string{"https://www.amazon.com/s?k=dog+food"}) {
		t.Fatalf("unexpected visited urls: %v", visits)
	}
	page.assertClosed(t)
}

func TestSearchOpensSessionPerCall(t *testing.T) {
	t.Parallel()

	page := &fakePageServer{
		handler: func(context.Context, string) (*mcp.CallToolResult, error) {
			return textResult("[A](/dp/A)"), nil
		},
	}
	c := newTestClient(t, Config{}, WithTransport(page.transport(t)), WithRunner(InlineRunner{}))

	for range 2 {
		if got := c.Search(context.Background(), "lamp"); len(got) != 1 {
			t.Fatalf("Search() = %v", got)
		}
	}
	page.mu.Lock()
	sessions := page.sessions
	page.mu.Unlock()
	if sessions != 2 {
		t.Fatalf("expected 2 sessions, got %d", sessions)
	}
	page.assertClosed(t)
}

func TestSearchSkipsNonTextBlocks(t *testing.T) {
	t.Parallel()

	page := &fakePageServer{
		handler: func(context.Context, string) (*mcp.CallToolResult, error) {
			return &mcp.CallToolResult{Content: []mcp.Content{
				&mcp.ImageContent{Data: []byte{0x89, 0x50}, MIMEType: "image/png"},
				&mcp.TextContent{Text: "[Shoe](/dp/S1)"},
			}}, nil
		},
	}
	c := newTestClient(t, Config{}, WithTransport(page.transport(t)))

	got := c.Search(context.Background(), "shoe")
	if !slices.Equal(got, []string{"https://www.amazon.com/dp/S1"}) {
		t.Fatalf("Search() = %v", got)
	}
}

func TestSearchSoftFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler func(context.Context, string) (*mcp.CallToolResult, error)
	}{
		{
			name: "tool error result",
			handler: func(context.Context, string) (*mcp.CallToolResult, error) {
				return &mcp.CallToolResult{IsError: true, Content: []mcp.Content{&mcp.TextContent{Text: "blocked"}}}, nil
			},
		},
		{
			name: "no text content",
			handler: func(context.Context, string) (*mcp.CallToolResult, error) {
				return &mcp.CallToolResult{Content: []mcp.Content{}}, nil
			},
		},
		{
			name: "no product links",
			handler: func(context.Context, string) (*mcp.CallToolResult, error) {
				return textResult("nothing to see here"), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page := &fakePageServer{handler: tt.handler}
			c := newTestClient(t, Config{}, WithTransport(page.transport(t)))
			if got := c.Search(context.Background(), "kettle"); len(got) != 0 {
				t.Fatalf("expected empty result, got %v", got)
			}
			page.assertClosed(t)
		})
	}
}

func TestSearchConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/sse"
	srv.Close()

	c := newTestClient(t, Config{Endpoint: endpoint, Timeout: 5 * time.Second})
	if got := c.Search(context.Background(), "dog food"); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestSearchHungEndpointTimesOut(t *testing.T) {
	t.Parallel()

	page := &fakePageServer{
		handler: func(ctx context.Context, _ string) (*mcp.CallToolResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	c := newTestClient(t, Config{Timeout: 50 * time.Millisecond}, WithTransport(page.transport(t)))

	start := time.Now()
	if got := c.Search(context.Background(), "tent"); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("search did not honour its timeout")
	}
	page.assertClosed(t)
}

func TestSearchCallerCancelClosesSession(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	page := &fakePageServer{
		handler: func(hctx context.Context, _ string) (*mcp.CallToolResult, error) {
			cancel()
			<-hctx.Done()
			return nil, hctx.Err()
		},
	}
	c := newTestClient(t, Config{}, WithTransport(page.transport(t)))

	if got := c.Search(ctx, "tent"); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	page.assertClosed(t)
}

func TestSearchBlankQuery(t *testing.T) {
	t.Parallel()

	page := &fakePageServer{}
	c := newTestClient(t, Config{}, WithTransport(page.transport(t)))
	if got := c.Search(context.Background(), "   "); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if page.sessions != 0 {
		t.Fatalf("expected no session for blank query, got %d", page.sessions)
	}
}

func TestNewClientRejectsNegativeMax(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{MaxResults: -1}); err == nil {
		t.Fatal("expected error for negative max results")
	}
}
