package nodes

import (
	"fmt"
	"slices"

	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
	statex "github.com/tanpawarit/product-return-agent/agent/state"
)

// CheckGuard rejects events the current session cannot accept. The stage is
// derived from the fields, never taken from the cached value.
func CheckGuard(s *statex.Session, ev Event) error {
	if s == nil {
		return fmt.Errorf("%w: session is nil", contractx.ErrValidation)
	}
	if !slices.Contains(EventKinds(), ev.Kind) {
		return fmt.Errorf("%w: unknown event kind %q", contractx.ErrValidation, ev.Kind)
	}

	stage := s.DeriveStage()
	if stage == statex.StageClosed && ev.Kind != EventReset {
		return rejected(ev, stage, "conversation has ended")
	}

	switch ev.Kind {
	case EventRequestTestMode:
		if stage != statex.StageAwaitingImage && stage != statex.StageTestLabelSelection {
			return rejected(ev, stage, "test mode is only available before product info")
		}
	case EventSubmitImage:
		if s.TestModeEnabled {
			return rejected(ev, stage, "image upload is disabled in test mode")
		}
		if stage != statex.StageAwaitingImage {
			return rejected(ev, stage, "no image is expected")
		}
		if ev.ImageRef == "" || ev.ImageRef == statex.NoImage {
			return fmt.Errorf("%w: image reference is required", contractx.ErrValidation)
		}
	case EventSelectTestLabel:
		if !s.TestModeEnabled {
			return rejected(ev, stage, "test mode is off")
		}
		if !ev.Label.Known() {
			return fmt.Errorf("%w: %w: %q", contractx.ErrValidation, statex.ErrUnknownLabel, ev.Label)
		}
	case EventSubmitProductInfo:
		if s.ValidationOutcome != statex.LabelValid {
			return rejected(ev, stage, "image is not validated")
		}
		if stage != statex.StageAwaitingProductInfo {
			return rejected(ev, stage, "product info was already submitted")
		}
		if ev.Title == "" {
			return fmt.Errorf("%w: product title is required", contractx.ErrValidation)
		}
	case EventSearchMarketplace:
		if s.ProductTitle == "" {
			return rejected(ev, stage, "no product title yet")
		}
	case EventReset, EventEndConversation:
	}
	return nil
}

func rejected(ev Event, stage statex.Stage, reason string) error {
	return fmt.Errorf("%w: %s in stage %s: %s", contractx.ErrInvalidTransition, ev.Kind, stage, reason)
}
