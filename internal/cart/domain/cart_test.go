package domain

import (
	"errors"
	"math"
	"testing"
)

func TestRefKey(t *testing.T) {
	if got := UserRef("u-1").Key(); got != "user:u-1" {
		t.Fatalf("got %q", got)
	}
	if got := GuestRef("g-1").Key(); got != "guest:g-1" {
		t.Fatalf("got %q", got)
	}
}

func TestRefValid(t *testing.T) {
	tests := []struct {
		name string
		ref  Ref
		want bool
	}{
		{"user", UserRef("u-1"), true},
		{"guest", GuestRef("g-1"), true},
		{"empty", Ref{}, false},
		{"both", Ref{UserID: "u-1", GuestID: "g-1"}, false},
		{"blank user", UserRef("  "), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Valid(); got != tt.want {
				t.Fatalf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("sums duplicates in first-seen order", func(t *testing.T) {
		got, err := Normalize([]Item{{"b", 1}, {"a", 2}, {"b", 3}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[0] != (Item{"b", 4}) || got[1] != (Item{"a", 2}) {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("duplicate sum saturates", func(t *testing.T) {
		got, err := Normalize([]Item{{"a", math.MaxInt32}, {"a", 1}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Quantity != math.MaxInt32 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("non-positive quantity -> invalid", func(t *testing.T) {
		_, err := Normalize([]Item{{"a", 0}})
		if !errors.Is(err, ErrInvalidItem) {
			t.Fatalf("expected ErrInvalidItem, got %v", err)
		}
	})
}

func TestAddQuantity(t *testing.T) {
	if got := AddQuantity(2, 3); got != 5 {
		t.Fatalf("got %d", got)
	}
	if got := AddQuantity(2, math.MaxInt32); got != math.MaxInt32 {
		t.Fatalf("got %d", got)
	}
}
