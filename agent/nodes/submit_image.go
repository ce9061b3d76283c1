package nodes

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
)

func SubmitImage(ctx context.Context, in *GraphState, validator contractx.Validator) (GraphOutput, error) {
	s := in.Session

	label, err := validator.Validate(ctx, in.Event.ImageRef)
	if err == nil && !label.Known() {
		err = fmt.Errorf("%w: classifier returned %q", contractx.ErrGateway, label)
	}
	if err != nil {
		// Only the error is reported; the rest of the session stays as it was.
		s.AppendAssistant(ValidationFailed(err))
		in.GatewayErr = err
		return in.output(), nil
	}

	s.ImageReference = in.Event.ImageRef
	s.ValidationOutcome = label
	s.AppendUser(MsgImageUploaded)
	s.AppendAssistant(LabelGuidance(label))
	return in.output(), nil
}
