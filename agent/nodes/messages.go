package nodes

import (
	"fmt"
	"strings"

	statex "github.com/tanpawarit/product-return-agent/agent/state"
)

const (
	MsgTestModeEnabled = "Skipped image upload (test mode enabled)."
	MsgImageUploaded   = "Uploaded an image."
	MsgImageValid      = "Image is valid. Please provide product title and reason for return."
	MsgAIGenerated     = "Invalid picture: AI-generated. Please re-upload a valid picture."
	MsgPhotoshopped    = "Invalid picture: Photoshopped. Please re-upload a valid picture."
	MsgInvalidImage    = "Invalid picture. Please re-upload a valid picture."
	MsgFarewell        = "Thank you for using the Product Return Agent. Goodbye!"
	MsgSelectValid     = "Please re-upload a valid picture or select 'valid' to proceed."
)

func LabelGuidance(label statex.ValidationLabel) string {
	switch label {
	case statex.LabelValid:
		return MsgImageValid
	case statex.LabelAIGenerated:
		return MsgAIGenerated
	case statex.LabelPhotoshopped:
		return MsgPhotoshopped
	default:
		return MsgInvalidImage
	}
}

func TestLabelSelected(label statex.ValidationLabel) string {
	return "Test label selected: " + string(label)
}

func ProductInfo(title, reason string) string {
	return fmt.Sprintf("Product Title: %s  \nReason for Return: %s", title, reason)
}

func Recommendation(text string) string {
	return "Recommendation: " + text
}

func RecommendationFailed(err error) string {
	return fmt.Sprintf("Error running agent: %v", err)
}

func ValidationFailed(err error) string {
	return fmt.Sprintf("Image validation error: %v", err)
}

func SearchResults(urls []string) string {
	var b strings.Builder
	b.WriteString("Top Amazon product URLs:")
	for i, u := range urls {
		fmt.Fprintf(&b, "\n- [Product %d](%s)", i+1, u)
	}
	return b.String()
}

func SearchFallback(searchURL string) string {
	return fmt.Sprintf("Didn't find a product automatically. Please click the link to search: [%s](%s)", searchURL, searchURL)
}
