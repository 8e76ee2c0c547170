package virtualscroll

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Searchable items provide their own text for search matching
type Searchable interface {
	SearchText() string
}

// SearchText returns the text an item is matched against
func SearchText(item any) string {
	switch v := item.(type) {
	case Searchable:
		return v.SearchText()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Matches reports whether item contains query, ignoring case. Both sides
// are NFC normalized so composed and decomposed accents match.
func Matches(item any, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(fold(SearchText(item)), fold(query))
}

func fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// Store holds the realized items of a list.
// It is not safe for concurrent use; List guards it.
type Store[T any] struct {
	items []T
}

// NewStore creates a store holding a copy of items
func NewStore[T any](items ...T) *Store[T] {
	s := &Store[T]{}
	s.SetItems(items)
	return s
}

// Len returns the number of items
func (s *Store[T]) Len() int {
	return len(s.items)
}

// At returns the item at index
func (s *Store[T]) At(index int) (T, bool) {
	if index < 0 || index >= len(s.items) {
		var zero T
		return zero, false
	}
	return s.items[index], true
}

// Items returns a copy of all items
func (s *Store[T]) Items() []T {
	return slices.Clone(s.items)
}

// Slice returns a copy of the items in r, clamped to the store
func (s *Store[T]) Slice(r Range) []T {
	start := min(max(r.Start, 0), len(s.items))
	end := min(max(r.End, start), len(s.items))
	return slices.Clone(s.items[start:end])
}

// SetItems replaces the whole collection
func (s *Store[T]) SetItems(items []T) {
	s.items = slices.Clone(items)
	if s.items == nil {
		s.items = []T{}
	}
}

// AddItems appends items to the end
func (s *Store[T]) AddItems(items []T) {
	s.items = append(s.items, items...)
}

// RemoveItem deletes the item at index. Out of range is a no-op.
func (s *Store[T]) RemoveItem(index int) bool {
	if index < 0 || index >= len(s.items) {
		return false
	}
	s.items = slices.Delete(s.items, index, index+1)
	return true
}

// UpdateItem replaces the item at index with patch(old). Out of range is a no-op.
func (s *Store[T]) UpdateItem(index int, patch func(T) T) bool {
	if patch == nil || index < 0 || index >= len(s.items) {
		return false
	}
	s.items[index] = patch(s.items[index])
	return true
}

// Clear drops all items
func (s *Store[T]) Clear() {
	s.items = []T{}
}

// FilteredView yields (index, item) pairs matching query.
// Indices are positions in the unfiltered collection.
// The sequence is lazy and can be ranged over more than once. It works on
// a copy taken now, so later mutations do not show through.
func (s *Store[T]) FilteredView(query string) iter.Seq2[int, T] {
	snapshot := slices.Clone(s.items)
	folded := fold(query)
	return func(yield func(int, T) bool) {
		for i, item := range snapshot {
			if folded != "" && !strings.Contains(fold(SearchText(item)), folded) {
				continue
			}
			if !yield(i, item) {
				return
			}
		}
	}
}

// Filtered collects FilteredView into a slice
func (s *Store[T]) Filtered(query string) []T {
	out := make([]T, 0, len(s.items))
	for _, item := range s.FilteredView(query) {
		out = append(out, item)
	}
	return out
}
