package services

import (
	"context"
	"errors"
	"testing"
)

func TestUserMatcher_PhoneThenEmail(t *testing.T) {
	store := newMemStore()
	store.usersByPhone["+15035550100"] = "u-phone"
	store.usersByEmail["ann@example.com"] = "u-email"
	users := &memUserRepo{memStore: store}
	m := NewUserMatcher(users)

	tests := []struct {
		name  string
		phone string
		email string
		want  string
	}{
		{"phone wins", "+15035550100", "ann@example.com", "u-phone"},
		{"email fallback", "+15035550199", "ann@example.com", "u-email"},
		{"email only", "", "ann@example.com", "u-email"},
		{"no match", "+15035550199", "nobody@example.com", ""},
		{"nothing to match", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Match(context.Background(), "ev-1", tt.phone, tt.email)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if got != tt.want {
				t.Errorf("Match = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMatcher_UsesRequestCache(t *testing.T) {
	store := newMemStore()
	store.usersByEmail["ann@example.com"] = "u-email"
	users := &memUserRepo{memStore: store}
	m := NewUserMatcher(users)

	ctx := WithLookupCache(context.Background(), NewLookupCache())
	for i := 0; i < 3; i++ {
		got, err := m.Match(ctx, "ev-1", "+15035550199", "ann@example.com")
		if err != nil || got != "u-email" {
			t.Fatalf("Match = %q, %v", got, err)
		}
	}
	if users.phoneCalls != 1 || users.emailCalls != 1 {
		t.Errorf("lookups phone=%d email=%d, want 1 each", users.phoneCalls, users.emailCalls)
	}

	// Different event, separate cache entry.
	if _, err := m.Match(ctx, "ev-2", "", "ann@example.com"); err != nil {
		t.Fatal(err)
	}
	if users.emailCalls != 2 {
		t.Errorf("email lookups = %d, want 2", users.emailCalls)
	}

	// Without a cache every call hits the repository.
	for i := 0; i < 2; i++ {
		_, _ = m.Match(context.Background(), "ev-1", "", "ann@example.com")
	}
	if users.emailCalls != 4 {
		t.Errorf("email lookups = %d, want 4", users.emailCalls)
	}
}

func TestUserMatcher_ErrorsAreNotCached(t *testing.T) {
	store := newMemStore()
	users := &memUserRepo{memStore: store, err: errors.New("timeout")}
	m := NewUserMatcher(users)
	ctx := WithLookupCache(context.Background(), NewLookupCache())

	if _, err := m.Match(ctx, "ev-1", "+15035550100", ""); err == nil {
		t.Fatal("expected error")
	}
	users.err = nil
	store.usersByPhone["+15035550100"] = "u-1"
	got, err := m.Match(ctx, "ev-1", "+15035550100", "")
	if err != nil || got != "u-1" {
		t.Fatalf("Match = %q, %v", got, err)
	}
}

func TestLookupCacheFrom(t *testing.T) {
	if LookupCacheFrom(context.Background()) != nil {
		t.Error("expected nil cache on bare context")
	}
	c := NewLookupCache()
	if LookupCacheFrom(WithLookupCache(context.Background(), c)) != c {
		t.Error("expected cache round trip")
	}
}
