package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/validate.txt
	validateRaw string

	//go:embed template/recommend.txt
	recommendRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Validate  string
	Recommend string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Validate:  strings.TrimSpace(validateRaw),
		Recommend: strings.TrimSpace(recommendRaw),
	}
}
