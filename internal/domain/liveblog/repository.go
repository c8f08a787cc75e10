package liveblog

import "context"

// Repository is the persistence contract for live-blog entries.
type Repository interface {
	// ReplaceForMatch deletes the match's auto-generated entries and inserts
	// the given events in one transaction, so readers never observe an empty
	// timeline mid-resync. Editor-written entries are untouched. Returns the
	// number of inserted rows.
	ReplaceForMatch(ctx context.Context, matchID string, events []Event) (int, error)

	// ListByMatch returns the match timeline ordered by minute then creation.
	ListByMatch(ctx context.Context, matchID string) ([]Entry, error)

	// CountAutoGenerated returns how many pipeline-written entries the match
	// already has.
	CountAutoGenerated(ctx context.Context, matchID string) (int, error)
}
