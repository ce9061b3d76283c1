package state

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Session is the single mutable aggregate of a return workflow.
// Stage is cached: DeriveStage recomputes it from the remaining fields.
type Session struct {
	Transcript []Message `json:"transcript"`
	Stage      Stage     `json:"stage"`

	TestModeEnabled bool            `json:"test_mode_enabled"`
	SimulatedLabel  ValidationLabel `json:"simulated_label"`

	ImageReference    string          `json:"image_reference"`
	ValidationOutcome ValidationLabel `json:"validation_outcome,omitempty"` // "" = absent

	ProductTitle string `json:"product_title"`
	ReturnReason string `json:"return_reason"`

	// LastRecommendation is non-nil once a recommendation was requested.
	// It points at "" when the gateway failed.
	LastRecommendation *string `json:"last_recommendation,omitempty"`

	Ended bool `json:"ended"`
}

type Stage string

const (
	StageAwaitingImage       Stage = "awaiting_image"
	StageTestLabelSelection  Stage = "test_label_selection"
	StageAwaitingProductInfo Stage = "awaiting_product_info"
	StageReady               Stage = "ready"
	StageClosed              Stage = "closed"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ValidationLabel string

const (
	LabelValid        ValidationLabel = "valid"
	LabelAIGenerated  ValidationLabel = "ai-generated"
	LabelPhotoshopped ValidationLabel = "photoshopped"
	LabelInvalid      ValidationLabel = "invalid"
)

// NoImage is the ImageReference of a session without an image.
const NoImage = "none"

var (
	ErrUnknownLabel = errors.New("unknown validation label")
	ErrStageDrift   = errors.New("cached stage does not match session fields")
)

// Labels returns the closed label set in display order.
func Labels() []ValidationLabel {
	return []ValidationLabel{LabelValid, LabelAIGenerated, LabelPhotoshopped, LabelInvalid}
}

func ParseLabel(raw string) (ValidationLabel, error) {
	l := ValidationLabel(strings.ToLower(strings.TrimSpace(raw)))
	if !l.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, raw)
	}
	return l, nil
}

func (l ValidationLabel) Known() bool {
	return slices.Contains(Labels(), l)
}

/* -------------------------- Session helpers ------------------------- */

func NewSession() *Session {
	s := &Session{
		Transcript:     []Message{},
		SimulatedLabel: LabelValid,
		ImageReference: NoImage,
	}
	s.Stage = s.DeriveStage()
	return s
}

// DeriveStage computes the stage from the session fields.
func (s *Session) DeriveStage() Stage {
	switch {
	case s.Ended:
		return StageClosed
	case s.ValidationOutcome == LabelValid && s.LastRecommendation != nil:
		return StageReady
	case s.ValidationOutcome == LabelValid:
		return StageAwaitingProductInfo
	case s.TestModeEnabled:
		return StageTestLabelSelection
	default:
		return StageAwaitingImage
	}
}

// SyncStage refreshes the cached stage and reports whether it had drifted.
func (s *Session) SyncStage() bool {
	derived := s.DeriveStage()
	drifted := s.Stage != derived
	s.Stage = derived
	return drifted
}

// ActiveLabel is the outcome the workflow currently acts on: the simulated
// label in test mode, the classifier outcome otherwise.
func (s *Session) ActiveLabel() ValidationLabel {
	if s.TestModeEnabled {
		return s.SimulatedLabel
	}
	return s.ValidationOutcome
}

func (s *Session) AppendUser(content string) {
	s.Transcript = append(s.Transcript, Message{Role: RoleUser, Content: content})
}

func (s *Session) AppendAssistant(content string) {
	s.Transcript = append(s.Transcript, Message{Role: RoleAssistant, Content: content})
}

// LastAssistant returns the most recent assistant message, if any.
func (s *Session) LastAssistant() (Message, bool) {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == RoleAssistant {
			return s.Transcript[i], true
		}
	}
	return Message{}, false
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Transcript = slices.Clone(s.Transcript)
	if s.LastRecommendation != nil {
		rec := *s.LastRecommendation
		cp.LastRecommendation = &rec
	}
	return &cp
}

func (s *Session) Validate() error {
	if s == nil {
		return errors.New("nil session")
	}
	if !s.SimulatedLabel.Known() {
		return fmt.Errorf("simulated label: %w: %q", ErrUnknownLabel, s.SimulatedLabel)
	}
	if s.ValidationOutcome != "" && !s.ValidationOutcome.Known() {
		return fmt.Errorf("validation outcome: %w: %q", ErrUnknownLabel, s.ValidationOutcome)
	}
	if s.TestModeEnabled && s.ValidationOutcome != "" && s.ValidationOutcome != s.SimulatedLabel {
		return fmt.Errorf("test mode outcome %q differs from simulated label %q", s.ValidationOutcome, s.SimulatedLabel)
	}
	if s.LastRecommendation != nil && s.ValidationOutcome != LabelValid {
		return errors.New("recommendation present without a valid outcome")
	}
	for i, m := range s.Transcript {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("transcript[%d]: unknown role %q", i, m.Role)
		}
	}
	if s.Stage != s.DeriveStage() {
		return fmt.Errorf("%w: cached=%s derived=%s", ErrStageDrift, s.Stage, s.DeriveStage())
	}
	return nil
}
