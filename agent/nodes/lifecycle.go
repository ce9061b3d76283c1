package nodes

import (
	statex "github.com/tanpawarit/product-return-agent/agent/state"
)

// Reset discards every field, not just the transcript.
func Reset(in *GraphState) (GraphOutput, error) {
	in.Session = statex.NewSession()
	return in.output(), nil
}

func EndConversation(in *GraphState) (GraphOutput, error) {
	in.Session.AppendAssistant(MsgFarewell)
	in.Session.Ended = true
	return in.output(), nil
}
