package store

import "context"

// Collection names for the portal's persistent state.
const (
	CollectionClients     = "clients"
	CollectionSpecialists = "specialists"
	CollectionSessions    = "sessions"
)

// Collections returns every known collection name.
func Collections() []string {
	return []string{CollectionClients, CollectionSpecialists, CollectionSessions}
}

// RecordStore maps a logical collection name to one JSON document holding
// the ordered list of records for that collection. Updates follow a
// read-full, mutate, write-full cycle; callers are responsible for
// serializing that cycle.
type RecordStore interface {
	// Read decodes the collection document into out. A collection that has
	// never been written decodes as the zero value (empty list).
	Read(ctx context.Context, collection string, out any) error
	// Write replaces the collection document with the JSON encoding of v.
	Write(ctx context.Context, collection string, v any) error
	// Clear removes the given collections.
	Clear(ctx context.Context, collections ...string) error
	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
