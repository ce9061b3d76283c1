package nodes

// SelectTestLabel simulates a classifier verdict. Re-selecting the active
// label is a no-op so repeated re-evaluation does not grow the transcript.
func SelectTestLabel(in *GraphState) (GraphOutput, error) {
	s := in.Session
	label := in.Event.Label

	if s.SimulatedLabel == label && s.ValidationOutcome == label {
		in.Noop = true
		return in.output(), nil
	}

	s.SimulatedLabel = label
	s.ValidationOutcome = label
	s.LastRecommendation = nil
	s.AppendUser(TestLabelSelected(label))
	s.AppendAssistant(LabelGuidance(label))
	return in.output(), nil
}
