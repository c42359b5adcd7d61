// Package resolve maps a human item title to exactly one backend item.
package resolve

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/systmms/opz/internal/backend"
	"github.com/systmms/opz/internal/logging"
)

// MaxCandidates caps the ambiguity preview.
const MaxCandidates = 20

// Lister returns the item directory, optionally scoped to a vault.
type Lister interface {
	ListItems(ctx context.Context, vault string) ([]backend.ItemSummary, error)
}

// Getter fetches one item with its fields.
type Getter interface {
	GetItem(ctx context.Context, id string) (*backend.ItemDetail, error)
}

// Resolution is a uniquely matched item. Detail is the already fetched
// item so callers need not fetch it again.
type Resolution struct {
	ItemID  string
	VaultID string
	Title   string
	Detail  *backend.ItemDetail
}

// Resolver finds items by title.
type Resolver struct {
	Lister Lister
	Getter Getter
	Logger *logging.Logger
	// Out receives the candidate preview for ambiguous titles.
	Out io.Writer
}

// Resolve matches title exactly first and falls back to a case-insensitive
// substring match only when nothing matches exactly.
func (r *Resolver) Resolve(ctx context.Context, vault, title string) (*Resolution, error) {
	items, err := r.Lister.ListItems(ctx, vault)
	if err != nil {
		return nil, err
	}

	matches := exactMatches(items, title)
	if len(matches) == 0 {
		matches = substringMatches(items, title)
		if len(matches) > 0 {
			r.Logger.Debug("No exact match for %q, using substring match", title)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Title: title}
	case 1:
	default:
		shown := matches
		if len(shown) > MaxCandidates {
			shown = shown[:MaxCandidates]
		}
		r.preview(shown)
		return nil, &AmbiguousTitleError{Title: title, Candidates: shown, Total: len(matches)}
	}

	match := matches[0]
	detail, err := r.Getter.GetItem(ctx, match.ID)
	if err != nil {
		return nil, err
	}

	vaultID := ""
	switch {
	case match.Vault != nil && match.Vault.ID != "":
		vaultID = match.Vault.ID
	case detail.Vault != nil && detail.Vault.ID != "":
		vaultID = detail.Vault.ID
	default:
		return nil, &VaultRequiredError{Title: match.Title, ItemID: match.ID}
	}

	r.Logger.Debug("Resolved %q to item %s in vault %s", title, match.ID, vaultID)
	return &Resolution{
		ItemID:  match.ID,
		VaultID: vaultID,
		Title:   match.Title,
		Detail:  detail,
	}, nil
}

// Find returns every item whose title contains query, ignoring case.
func (r *Resolver) Find(ctx context.Context, vault, query string) ([]backend.ItemSummary, error) {
	items, err := r.Lister.ListItems(ctx, vault)
	if err != nil {
		return nil, err
	}
	return substringMatches(items, query), nil
}

func (r *Resolver) preview(candidates []backend.ItemSummary) {
	if r.Out == nil {
		return
	}
	fmt.Fprintln(r.Out, "Ambiguous item title. Candidates:")
	for _, it := range candidates {
		fmt.Fprintf(r.Out, "  %s  [%s]  %s\n", it.ID, it.VaultName(), it.Title)
	}
}

func exactMatches(items []backend.ItemSummary, title string) []backend.ItemSummary {
	var out []backend.ItemSummary
	for _, it := range items {
		if it.Title == title {
			out = append(out, it)
		}
	}
	return out
}

func substringMatches(items []backend.ItemSummary, query string) []backend.ItemSummary {
	q := strings.ToLower(query)
	var out []backend.ItemSummary
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), q) {
			out = append(out, it)
		}
	}
	return out
}
