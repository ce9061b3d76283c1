package contract

import (
	statex "github.com/tanpawarit/product-return-agent/agent/state"
)

type GatewayType string

const (
	GatewayTypeValidation     GatewayType = "validation"
	GatewayTypeRecommendation GatewayType = "recommendation"
)

type ProductQuery struct {
	Title        string `json:"title"`
	ReturnReason string `json:"return_reason"`
}

// RecommendationRequest carries ValidationOverride as the active outcome,
// real or simulated. Callers always set it explicitly.
type RecommendationRequest struct {
	ImageReference     string                 `json:"image_reference"`
	Query              ProductQuery           `json:"query"`
	ValidationOverride statex.ValidationLabel `json:"validation_override"`
}
