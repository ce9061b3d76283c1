package validation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
	statex "github.com/tanpawarit/product-return-agent/agent/state"
	openrouterx "github.com/tanpawarit/product-return-agent/pkg/openrouter"
)

// 1x1 PNG header is enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fakeCompletions struct {
	mu     sync.Mutex
	status int
	reply  string
	bodies []string
}

func (f *fakeCompletions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.bodies = append(f.bodies, string(raw))
	f.mu.Unlock()

	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.NotFound(w, r)
		return
	}
	if f.status != 0 && f.status != http.StatusOK {
		w.WriteHeader(f.status)
		fmt.Fprint(w, `{"error":{"message":"upstream failure"}}`)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id":"cmpl-1","object":"chat.completion","created":0,"model":"vision","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":%q}}]}`, f.reply)
}

func newTestValidator(t *testing.T, handler http.Handler, opts ...Option) *Validator {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := openrouterx.NewClient(openrouterx.Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		MaxRetries: 0,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	readFile := func(path string) ([]byte, error) {
		if path == "missing.jpg" {
			return nil, errors.New("no such file")
		}
		if path == "notes.txt" {
			return []byte("just some text"), nil
		}
		return pngBytes, nil
	}
	opts = append([]Option{WithFileReader(readFile)}, opts...)

	v, err := New(client, "vision", "classify the image", opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return v
}

func TestValidateLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reply string
		want  statex.ValidationLabel
	}{
		{reply: "valid", want: statex.LabelValid},
		{reply: "AI-generated.", want: statex.LabelAIGenerated},
		{reply: "ai generated", want: statex.LabelAIGenerated},
		{reply: "`photoshopped`", want: statex.LabelPhotoshopped},
		{reply: " INVALID ", want: statex.LabelInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			t.Parallel()

			api := &fakeCompletions{reply: tt.reply}
			v := newTestValidator(t, api)

			got, err := v.Validate(context.Background(), "photo.png")
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Validate() = %q, want %q", got, tt.want)
			}

			api.mu.Lock()
			defer api.mu.Unlock()
			if len(api.bodies) != 1 || !strings.Contains(api.bodies[0], "data:image/png;base64,") {
				t.Fatalf("expected image data url in request, got %v", api.bodies)
			}
		})
	}
}

func TestValidateGatewayErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		api      *fakeCompletions
		imageRef string
	}{
		{name: "upstream 500", api: &fakeCompletions{status: http.StatusInternalServerError}, imageRef: "photo.png"},
		{name: "unknown reply", api: &fakeCompletions{reply: "maybe a cat"}, imageRef: "photo.png"},
		{name: "negated label", api: &fakeCompletions{reply: "not valid"}, imageRef: "photo.png"},
		{name: "several labels", api: &fakeCompletions{reply: "not ai-generated, photoshopped"}, imageRef: "photo.png"},
		{name: "label in a sentence", api: &fakeCompletions{reply: "The image is valid"}, imageRef: "photo.png"},
		{name: "missing file", api: &fakeCompletions{reply: "valid"}, imageRef: "missing.jpg"},
		{name: "not an image", api: &fakeCompletions{reply: "valid"}, imageRef: "notes.txt"},
		{name: "no image", api: &fakeCompletions{reply: "valid"}, imageRef: statex.NoImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := newTestValidator(t, tt.api)
			_, err := v.Validate(context.Background(), tt.imageRef)
			if !errors.Is(err, contractx.ErrGateway) {
				t.Fatalf("expected ErrGateway, got %v", err)
			}
		})
	}
}

func TestValidateSendsTemperature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{name: "default", want: `"temperature":0`},
		{name: "configured", opts: []Option{WithTemperature(0.25)}, want: `"temperature":0.25`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := &fakeCompletions{reply: "valid"}
			v := newTestValidator(t, api, tt.opts...)
			if _, err := v.Validate(context.Background(), "photo.png"); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			api.mu.Lock()
			defer api.mu.Unlock()
			if len(api.bodies) != 1 || !strings.Contains(api.bodies[0], tt.want) {
				t.Fatalf("expected %s in request, got %v", tt.want, api.bodies)
			}
		})
	}
}

func TestNewRequiresPromptAndModel(t *testing.T) {
	t.Parallel()

	client, err := openrouterx.NewClient(openrouterx.Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := New(client, "", "prompt"); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := New(client, "vision", "  "); !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
	if _, err := New(nil, "vision", "prompt"); err == nil {
		t.Fatal("expected error for nil client")
	}
}
