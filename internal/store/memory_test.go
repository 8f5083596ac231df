package store

import (
	"context"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var empty []string
	if err := s.Read(ctx, CollectionClients, &empty); err != nil {
		t.Fatalf("read of unwritten collection must succeed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("unwritten collection should decode to empty")
	}

	if err := s.Write(ctx, CollectionClients, []string{"a", "b"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got []string
	if err := s.Read(ctx, CollectionClients, &got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0] != "a" {
		t.Fatalf("unexpected round trip: %+v", got)
	}

	if err := s.Clear(ctx, CollectionClients); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got = nil
	if err := s.Read(ctx, CollectionClients, &got); err != nil {
		t.Fatalf("read after clear: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("cleared collection should be empty")
	}
}
