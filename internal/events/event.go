// Package events defines the catalog domain events exchanged over the
// message broker and the consumer that writes them to the audit log.
package events

import "time"

// QueueName is the durable queue carrying catalog events.
const QueueName = "catalog.events"

// Event types.
const (
	MovieCreated    = "movie.created"
	MovieUpdated    = "movie.updated"
	MovieDeleted    = "movie.deleted"
	BatchApplied    = "batch.applied"
	ImportCompleted = "import.completed"
)

// CatalogEvent is published after a catalog mutation commits.  It carries
// enough context for the audit log without reading the database.
type CatalogEvent struct {
	Type       string   `json:"type"`
	ActorID    string   `json:"actor_id"`
	MovieIDs   []string `json:"movie_ids,omitempty"`
	Title      string   `json:"title,omitempty"`
	Action     string   `json:"action,omitempty"`
	Source     string   `json:"source,omitempty"`
	Succeeded  int      `json:"succeeded,omitempty"`
	Failed     int      `json:"failed,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	OccurredAt string   `json:"occurred_at"`
}

// New stamps an event of type typ with the current UTC time.
func New(typ, actor string) CatalogEvent {
	return CatalogEvent{Type: typ, ActorID: actor, OccurredAt: time.Now().UTC().Format(time.RFC3339)}
}
