package validation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
	statex "github.com/tanpawarit/product-return-agent/agent/state"
)

const (
	defaultTimeout      = 30 * time.Second
	maxImageSizeBytes   = 20 << 20
	classifyInstruction = "Classify this product photo."
)

// Validator classifies product photos with a vision-capable chat model.
type Validator struct {
	client       *openaisdk.Client
	model        string
	systemPrompt string
	timeout      time.Duration

	temperature float64

	readFile func(string) ([]byte, error)
}

var _ contractx.Validator = (*Validator)(nil)

type Option func(*Validator)

func WithTimeout(timeout time.Duration) Option {
	return func(v *Validator) {
		if timeout > 0 {
			v.timeout = timeout
		}
	}
}

func WithTemperature(temperature float64) Option {
	return func(v *Validator) {
		if temperature >= 0 {
			v.temperature = temperature
		}
	}
}

func WithFileReader(read func(string) ([]byte, error)) Option {
	return func(v *Validator) {
		if read != nil {
			v.readFile = read
		}
	}
}

func New(client *openaisdk.Client, model string, systemPrompt string, opts ...Option) (*Validator, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("%w: validation model is required", contractx.ErrValidation)
	}
	systemPrompt = strings.TrimSpace(systemPrompt)
	if systemPrompt == "" {
		return nil, fmt.Errorf("%w: validation prompt", contractx.ErrPromptMissing)
	}

	v := &Validator{
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
		timeout:      defaultTimeout,
		readFile:     os.ReadFile,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v, nil
}

func (v *Validator) Validate(ctx context.Context, imageRef string) (statex.ValidationLabel, error) {
	imageRef = strings.TrimSpace(imageRef)
	if imageRef == "" || imageRef == statex.NoImage {
		return "", fmt.Errorf("%w: no image to validate", contractx.ErrGateway)
	}

	dataURL, err := v.encodeImage(imageRef)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	resp, err := v.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(v.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(v.systemPrompt),
			openaisdk.UserMessage([]openaisdk.ChatCompletionContentPartUnionParam{
				openaisdk.TextContentPart(classifyInstruction),
				openaisdk.ImageContentPart(openaisdk.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
		Temperature: openaisdk.Float(v.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: classify image: %v", contractx.ErrGateway, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: classifier returned no choices", contractx.ErrGateway)
	}

	label, err := parseReply(resp.Choices[0].Message.Content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrGateway, err)
	}
	return label, nil
}

func (v *Validator) encodeImage(path string) (string, error) {
	data, err := v.readFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read image: %v", contractx.ErrGateway, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: image %s is empty", contractx.ErrGateway, path)
	}
	if len(data) > maxImageSizeBytes {
		return "", fmt.Errorf("%w: image %s exceeds %d bytes", contractx.ErrGateway, path, maxImageSizeBytes)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: %s is not an image (%s)", contractx.ErrGateway, path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// parseReply accepts exactly one label, tolerating casing, surrounding
// punctuation and "ai generated" spellings. Negated or multi-label replies
// fail.
func parseReply(reply string) (statex.ValidationLabel, error) {
	norm := strings.ToLower(strings.TrimSpace(reply))
	norm = strings.Trim(norm, " \t\n.\"'`*")
	norm = strings.ReplaceAll(norm, "_", "-")
	norm = strings.ReplaceAll(norm, "ai generated", "ai-generated")

	label, err := statex.ParseLabel(norm)
	if err != nil {
		return "", fmt.Errorf("classifier replied %q: %w", reply, err)
	}
	return label, nil
}
