package conversation

import (
	nodex "github.com/tanpawarit/product-return-agent/agent/nodes"
	statex "github.com/tanpawarit/product-return-agent/agent/state"
)

type (
	Event     = nodex.Event
	EventKind = nodex.EventKind
)

func RequestTestMode() Event {
	return Event{Kind: nodex.EventRequestTestMode}
}

func SubmitImage(imageRef string) Event {
	return Event{Kind: nodex.EventSubmitImage, ImageRef: imageRef}
}

func SelectTestLabel(label statex.ValidationLabel) Event {
	return Event{Kind: nodex.EventSelectTestLabel, Label: label}
}

func SubmitProductInfo(title, reason string) Event {
	return Event{Kind: nodex.EventSubmitProductInfo, Title: title, Reason: reason}
}

func SearchMarketplace() Event {
	return Event{Kind: nodex.EventSearchMarketplace}
}

func Reset() Event {
	return Event{Kind: nodex.EventReset}
}

func EndConversation() Event {
	return Event{Kind: nodex.EventEndConversation}
}

// StageHint is the instruction shown next to the transcript for a stage.
func StageHint(s *statex.Session) string {
	switch s.DeriveStage() {
	case statex.StageAwaitingImage:
		return "Upload a product image or skip to test mode."
	case statex.StageTestLabelSelection:
		return nodex.MsgSelectValid
	case statex.StageAwaitingProductInfo:
		return "Enter the product title and the reason for return."
	case statex.StageReady:
		return "Search the marketplace, reset, or end the chat."
	default:
		return "Conversation ended. Reset to start over."
	}
}
