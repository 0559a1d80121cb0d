package response

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/ondcsearch/internal/domain/search/mode"
)

func TestEmpty(t *testing.T) {
	r := Empty("xyzzynonexistent", 1, 10, nil)
	if !r.Success || r.TotalResults != 0 || r.SearchType != mode.None {
		t.Errorf("response = %+v", r)
	}
	if !strings.Contains(r.Message, "No products found") || !strings.Contains(r.Message, "xyzzynonexistent") {
		t.Errorf("Message = %q", r.Message)
	}
	if r.Results == nil {
		t.Error("Results should be an empty slice, not nil")
	}
	if r.FilteredByRelevance {
		t.Error("FilteredByRelevance without threshold")
	}
}

func TestFoundMessage(t *testing.T) {
	if got := FoundMessage(3, mode.Hybrid, nil); got != "Found 3 products (hybrid (mongodb+vector) search)" {
		t.Errorf("no threshold: %q", got)
	}
	th := 0.6
	if got := FoundMessage(1, mode.Vector, &th); got != "Found 1 products (vector search, threshold: 0.60)" {
		t.Errorf("threshold: %q", got)
	}
}
