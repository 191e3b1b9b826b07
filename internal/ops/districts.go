package ops

import (
	"github.com/hpungsan/wxdash/internal/district"
)

// ListDistrictsOutput contains the directory in order.
type ListDistrictsOutput struct {
	Districts []string `json:"districts"`
}

// ListDistricts returns every canonical district name in directory order.
func ListDistricts(env *Env) *ListDistrictsOutput {
	return &ListDistrictsOutput{Districts: env.Directory.Names()}
}

// SuggestInput contains parameters for the Suggest operation.
type SuggestInput struct {
	Query string `json:"query"`
}

// SuggestOutput contains the matches for a query. Visible is false when
// there is nothing to show.
type SuggestOutput struct {
	Query   string           `json:"query"`
	Visible bool             `json:"visible"`
	Matches []district.Match `json:"matches"`
}

// Suggest filters the directory by a case-insensitive substring query.
func Suggest(env *Env, input SuggestInput) *SuggestOutput {
	matches := env.Directory.Suggest(input.Query)
	if matches == nil {
		matches = []district.Match{}
	}
	return &SuggestOutput{
		Query:   input.Query,
		Visible: len(matches) > 0,
		Matches: matches,
	}
}
