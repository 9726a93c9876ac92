package application

import (
	"context"
	"fmt"
	"strings"

	"taskbridge-mcp-server/internal/domain"
)

// TargetSource records where a resolved identifier came from.
type TargetSource int

const (
	// SourceExplicit is an identifier supplied by the caller, used unverified.
	SourceExplicit TargetSource = iota
	// SourceConfigured is a process-wide configured default.
	SourceConfigured
	// SourceDerived is computed by one extra read, such as the first list of a board.
	SourceDerived
	// SourceLookup is found by matching a name against a fetched collection.
	SourceLookup
)

// String returns the string representation of TargetSource.
func (s TargetSource) String() string {
	switch s {
	case SourceExplicit:
		return "explicit"
	case SourceConfigured:
		return "configured"
	case SourceDerived:
		return "derived"
	case SourceLookup:
		return "lookup"
	default:
		return "unknown"
	}
}

// ResolvedTarget is an identifier plus its provenance. It lives for one call.
type ResolvedTarget struct {
	ID     string
	Source TargetSource
	// Label is a human-readable name when one is known, otherwise the ID.
	Label string
}

// Resolver fills in identifiers the caller left out. Every entity kind goes
// through the same precedence: explicit, configured default, derived
// default, name lookup. Explicit ids are used exactly as given. Name lookups match case-insensitively and the first
// match wins; duplicates are not reported.
type Resolver struct {
	trello   domain.TrelloAPI
	services domain.ServicesConfig
}

// NewResolver creates a resolver over the configured defaults.
func NewResolver(trello domain.TrelloAPI, services domain.ServicesConfig) *Resolver {
	return &Resolver{
		trello:   trello,
		services: services,
	}
}

// stage is one step of the precedence pipeline. ok=false passes to the next stage.
type stage func(ctx context.Context) (target ResolvedTarget, ok bool, err error)

// resolve runs stages in order and returns the first target produced.
// When no stage applies, fallback is returned.
func resolve(ctx context.Context, fallback error, stages ...stage) (ResolvedTarget, error) {
	for _, s := range stages {
		if s == nil {
			continue
		}
		target, ok, err := s(ctx)
		if err != nil {
			return ResolvedTarget{}, err
		}
		if ok {
			return target, nil
		}
	}
	return ResolvedTarget{}, fallback
}

// explicit passes a caller-supplied id through unchanged and unverified.
// Only an empty id falls through to the next stage.
func explicit(id string) stage {
	return func(context.Context) (ResolvedTarget, bool, error) {
		if id == "" {
			return ResolvedTarget{}, false, nil
		}
		return ResolvedTarget{ID: id, Source: SourceExplicit, Label: id}, true, nil
	}
}

func configured(value string) stage {
	return func(context.Context) (ResolvedTarget, bool, error) {
		if value == "" {
			return ResolvedTarget{}, false, nil
		}
		return ResolvedTarget{ID: value, Source: SourceConfigured, Label: value}, true, nil
	}
}

// Board resolves the Trello board: explicit id, then TRELLO_BOARD_ID.
func (r *Resolver) Board(explicitID string) (ResolvedTarget, error) {
	return resolve(context.Background(),
		domain.NewConfigurationError("no Trello board specified: pass boardId or set %s", domain.EnvTrelloBoardID),
		explicit(explicitID),
		configured(r.services.Trello.BoardID),
	)
}

// Owner resolves the GitHub repository owner: explicit, then GITHUB_OWNER.
func (r *Resolver) Owner(explicitOwner string) (ResolvedTarget, error) {
	return resolve(context.Background(),
		domain.NewConfigurationError("no GitHub owner specified: pass owner or set %s", domain.EnvGitHubOwner),
		explicit(explicitOwner),
		configured(r.services.GitHub.Owner),
	)
}

// Repo resolves the GitHub repository name: explicit, then GITHUB_REPO.
func (r *Resolver) Repo(explicitRepo string) (ResolvedTarget, error) {
	return resolve(context.Background(),
		domain.NewConfigurationError("no GitHub repository specified: pass repo or set %s", domain.EnvGitHubRepo),
		explicit(explicitRepo),
		configured(r.services.GitHub.Repo),
	)
}

// TargetList resolves the list a card goes to. An explicit id wins; a list
// name is looked up on the default board; with neither, the first list of
// the default board is used.
func (r *Resolver) TargetList(ctx context.Context, explicitListID, listName string) (ResolvedTarget, error) {
	stages := []stage{explicit(explicitListID)}
	if strings.TrimSpace(listName) != "" {
		stages = append(stages, r.lookupList(listName))
	} else {
		stages = append(stages, r.firstList())
	}
	return resolve(ctx, domain.NewValidationError("no target list specified"), stages...)
}

// Card resolves a card from an explicit id or by name on the default board.
func (r *Resolver) Card(ctx context.Context, explicitCardID, cardName string) (ResolvedTarget, error) {
	stages := []stage{explicit(explicitCardID)}
	if strings.TrimSpace(cardName) != "" {
		stages = append(stages, r.lookupCard(cardName))
	}
	return resolve(ctx, domain.NewValidationError("either cardId or cardName is required"), stages...)
}

func (r *Resolver) firstList() stage {
	return func(ctx context.Context) (ResolvedTarget, bool, error) {
		board, err := r.Board("")
		if err != nil {
			return ResolvedTarget{}, false, err
		}
		lists, err := r.trello.GetBoardLists(ctx, board.ID)
		if err != nil {
			return ResolvedTarget{}, false, fmt.Errorf("failed to fetch lists of board %s: %w", board.ID, err)
		}
		if len(lists) == 0 {
			return ResolvedTarget{}, false, domain.NewValidationError("board %s has no lists", board.ID)
		}
		return ResolvedTarget{ID: lists[0].ID, Source: SourceDerived, Label: lists[0].Name}, true, nil
	}
}

func (r *Resolver) lookupList(name string) stage {
	return func(ctx context.Context) (ResolvedTarget, bool, error) {
		board, err := r.Board("")
		if err != nil {
			return ResolvedTarget{}, false, err
		}
		lists, err := r.trello.GetBoardLists(ctx, board.ID)
		if err != nil {
			return ResolvedTarget{}, false, fmt.Errorf("failed to fetch lists of board %s: %w", board.ID, err)
		}
		list, ok := matchByName(lists, name, func(l domain.List) string { return l.Name })
		if !ok {
			return ResolvedTarget{}, false, domain.NewNotFoundError("List '%s' not found", name)
		}
		return ResolvedTarget{ID: list.ID, Source: SourceLookup, Label: list.Name}, true, nil
	}
}

func (r *Resolver) lookupCard(name string) stage {
	return func(ctx context.Context) (ResolvedTarget, bool, error) {
		board, err := r.Board("")
		if err != nil {
			return ResolvedTarget{}, false, err
		}
		cards, err := r.trello.GetBoardCards(ctx, board.ID)
		if err != nil {
			return ResolvedTarget{}, false, fmt.Errorf("failed to fetch cards of board %s: %w", board.ID, err)
		}
		card, ok := matchByName(cards, name, func(c domain.Card) string { return c.Name })
		if !ok {
			return ResolvedTarget{}, false, domain.NewNotFoundError("Card '%s' not found", name)
		}
		return ResolvedTarget{ID: card.ID, Source: SourceLookup, Label: card.Name}, true, nil
	}
}

// matchByName returns the first item whose name equals name, ignoring case.
func matchByName[T any](items []T, name string, nameOf func(T) string) (T, bool) {
	for _, item := range items {
		if strings.EqualFold(nameOf(item), name) {
			return item, true
		}
	}
	var zero T
	return zero, false
}
