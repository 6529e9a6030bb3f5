package commands

import (
	"testing"
)

func menuFixture() []menuItem {
	return []menuItem{
		{key: "winners"},
		{key: "events"},
		{key: "whoami", authRequired: true},
		{key: "students", adminOnly: true},
		{key: "judges", adminOnly: true},
	}
}

func keys(items []menuItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.key
	}
	return out
}

func TestVisibleItems_Anonymous(t *testing.T) {
	visible := visibleItems(menuFixture(), false, false)

	got := keys(visible)
	want := []string{"winners", "events"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestVisibleItems_AuthenticatedNonAdmin(t *testing.T) {
	visible := visibleItems(menuFixture(), true, false)

	for _, item := range visible {
		if item.adminOnly {
			t.Errorf("admin-only item %q visible to non-admin", item.key)
		}
	}
	if len(visible) != 3 {
		t.Errorf("expected 3 visible items, got %d", len(visible))
	}
}

func TestVisibleItems_Admin(t *testing.T) {
	visible := visibleItems(menuFixture(), true, true)

	if len(visible) != 5 {
		t.Errorf("expected all 5 items visible, got %d", len(visible))
	}
}

// Admin without authentication cannot happen through the session manager,
// but the menu must not show auth-required entries if it somehow does.
func TestVisibleItems_AdminFlagWithoutAuth(t *testing.T) {
	visible := visibleItems(menuFixture(), false, true)

	for _, item := range visible {
		if item.authRequired {
			t.Errorf("auth-required item %q visible while unauthenticated", item.key)
		}
	}
}

// Recomputing with the same flags yields the same set.
func TestVisibleItems_Idempotent(t *testing.T) {
	first := visibleItems(menuFixture(), true, false)
	second := visibleItems(menuFixture(), true, false)

	if len(first) != len(second) {
		t.Fatalf("expected identical results, got %d then %d items", len(first), len(second))
	}
	for i := range first {
		if first[i].key != second[i].key {
			t.Errorf("item %d differs: %q vs %q", i, first[i].key, second[i].key)
		}
	}
}
