package nodes

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
	statex "github.com/tanpawarit/product-return-agent/agent/state"
)

type EventKind string

const (
	EventRequestTestMode   EventKind = "request_test_mode"
	EventSubmitImage       EventKind = "submit_image"
	EventSelectTestLabel   EventKind = "select_test_label"
	EventSubmitProductInfo EventKind = "submit_product_info"
	EventSearchMarketplace EventKind = "search_marketplace"
	EventReset             EventKind = "reset"
	EventEndConversation   EventKind = "end_conversation"
)

func EventKinds() []EventKind {
	return []EventKind{
		EventRequestTestMode,
		EventSubmitImage,
		EventSelectTestLabel,
		EventSubmitProductInfo,
		EventSearchMarketplace,
		EventReset,
		EventEndConversation,
	}
}

// Event is one user action. Only the fields of its kind are read.
type Event struct {
	Kind     EventKind              `json:"kind"`
	ImageRef string                 `json:"image_ref,omitempty"`
	Label    statex.ValidationLabel `json:"label,omitempty"`
	Title    string                 `json:"title,omitempty"`
	Reason   string                 `json:"reason,omitempty"`
}

// TestModeImage stands in for the image reference while test mode is on.
const TestModeImage = "dummy.jpg"

type GraphInput struct {
	Session *statex.Session
	Event   Event
}

type GraphOutput struct {
	Session *statex.Session
	// Noop is set when the event was accepted but changed nothing.
	Noop bool
	// GatewayErr is a recovered gateway failure already reported in the
	// transcript.
	GatewayErr error
}

type GraphState struct {
	Session    *statex.Session
	Event      Event
	Noop       bool
	GatewayErr error
}

func (in *GraphState) output() GraphOutput {
	return GraphOutput{
		Session:    in.Session,
		Noop:       in.Noop,
		GatewayErr: in.GatewayErr,
	}
}

// NormalizeEvent trims free text and lowercases labels.
func NormalizeEvent(ev Event) Event {
	ev.Kind = EventKind(strings.TrimSpace(string(ev.Kind)))
	ev.ImageRef = strings.TrimSpace(ev.ImageRef)
	ev.Label = statex.ValidationLabel(strings.ToLower(strings.TrimSpace(string(ev.Label))))
	ev.Title = strings.TrimSpace(ev.Title)
	ev.Reason = strings.TrimSpace(ev.Reason)
	return ev
}

func PrepareEvent(in GraphInput) (*GraphState, error) {
	if in.Session == nil {
		return nil, fmt.Errorf("%w: session is nil", contractx.ErrValidation)
	}
	return &GraphState{
		Session: in.Session,
		Event:   in.Event,
	}, nil
}
