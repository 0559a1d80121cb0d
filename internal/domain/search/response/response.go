package response

import (
	"fmt"

	"github.com/kailas-cloud/ondcsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/result"
)

// Response is the outcome of one orchestrated search. It is always well-formed:
// path failures surface as an empty or fallback-tagged result set, never as an error.
type Response struct {
	Success             bool
	Message             string
	Results             []result.Scored
	TotalResults        int
	Page                int
	PageSize            int
	SearchType          mode.Mode
	RelevanceThreshold  *float64
	FilteredByRelevance bool
	Fallback            result.Fallback
}

// Empty builds the "no products found" response.
func Empty(query string, page, pageSize int, threshold *float64) Response {
	return Response{
		Success:             true,
		Message:             NoResultsMessage(query),
		Results:             []result.Scored{},
		Page:                page,
		PageSize:            pageSize,
		SearchType:          mode.None,
		RelevanceThreshold:  threshold,
		FilteredByRelevance: threshold != nil,
	}
}

// NoResultsMessage is the user-facing text for an empty result set.
func NoResultsMessage(query string) string {
	return fmt.Sprintf("No products found for '%s'", query)
}

// FoundMessage summarizes a non-empty result set.
func FoundMessage(total int, searchType mode.Mode, threshold *float64) string {
	msg := fmt.Sprintf("Found %d products (%s search", total, searchType)
	if threshold != nil {
		msg += fmt.Sprintf(", threshold: %.2f", *threshold)
	}
	return msg + ")"
}
