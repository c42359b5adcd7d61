package resolve

import (
	"fmt"

	"github.com/systmms/opz/internal/backend"
)

// NotFoundError means no item title matched, exactly or as a substring.
type NotFoundError struct {
	Title string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no item matched title: %s", e.Title)
}

// AmbiguousTitleError means several items matched. Candidates holds at most
// MaxCandidates entries; Total is the full match count.
type AmbiguousTitleError struct {
	Title      string
	Candidates []backend.ItemSummary
	Total      int
}

func (e *AmbiguousTitleError) Error() string {
	return fmt.Sprintf("item title %q is ambiguous (%d matches)", e.Title, e.Total)
}

// VaultRequiredError means the matched item carried no vault id in either
// the listing or its details.
type VaultRequiredError struct {
	Title  string
	ItemID string
}

func (e *VaultRequiredError) Error() string {
	return fmt.Sprintf("vault id is unknown for item %s (%s)", e.ItemID, e.Title)
}
