package nodes

import (
	statex "github.com/tanpawarit/product-return-agent/agent/state"
)

// RequestTestMode skips the upload and simulates a valid image.
func RequestTestMode(in *GraphState) (GraphOutput, error) {
	s := in.Session
	s.TestModeEnabled = true
	s.SimulatedLabel = statex.LabelValid
	s.ValidationOutcome = statex.LabelValid
	s.ImageReference = TestModeImage
	s.LastRecommendation = nil
	s.AppendUser(MsgTestModeEnabled)
	return in.output(), nil
}
