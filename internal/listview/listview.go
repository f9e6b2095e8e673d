// Package listview filters, searches and sorts the record lists shown in the
// admin tables.
package listview

import (
	"slices"
	"strings"
	"time"
)

// FilterAll disables the discrete filter
const FilterAll = "all"

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps anything other than "desc" to Asc
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// Sort selects a column and direction. The zero value means unsorted.
type Sort struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Key is a comparable column value
type Key struct {
	numeric bool
	num     float64
	timed   bool
	at      time.Time
	text    string
}

// Number builds a numerically compared key
func Number(v float64) Key { return Key{numeric: true, num: v} }

// Int builds a numerically compared key
func Int(v int) Key { return Number(float64(v)) }

// Time compares by instant. Zero times sort first.
func Time(t time.Time) Key { return Key{timed: true, at: t} }

// Text builds a case-insensitively compared key
func Text(s string) Key { return Key{text: strings.ToLower(s)} }

func compareKeys(a, b Key) int {
	if a.timed && b.timed {
		return a.at.Compare(b.at)
	}
	if a.numeric && b.numeric {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	}
	return strings.Compare(a.text, b.text)
}

// Processor holds the per-page configuration: which fields the free-text
// query searches, which field the discrete filter matches and which columns
// can be sorted.
type Processor[T any] struct {
	search  []func(T) string
	filter  func(T) string
	columns map[string]func(T) Key
}

// Option configures a Processor
type Option[T any] func(*Processor[T])

// New creates a Processor
func New[T any](opts ...Option[T]) *Processor[T] {
	p := &Processor[T]{columns: make(map[string]func(T) Key)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithSearch adds fields matched by the free-text query
func WithSearch[T any](fields ...func(T) string) Option[T] {
	return func(p *Processor[T]) {
		p.search = append(p.search, fields...)
	}
}

// WithFilter sets the field compared against the discrete filter value
func WithFilter[T any](field func(T) string) Option[T] {
	return func(p *Processor[T]) {
		p.filter = field
	}
}

// WithColumn registers a sortable column
func WithColumn[T any](key string, value func(T) Key) Option[T] {
	return func(p *Processor[T]) {
		p.columns[key] = value
	}
}

// WithRankColumn registers a column ordered by a fixed rank instead of
// lexically. Values missing from ranks sort after every ranked value.
func WithRankColumn[T any](key string, value func(T) string, ranks map[string]int) Option[T] {
	lowered := make(map[string]int, len(ranks))
	last := 0
	for k, r := range ranks {
		lowered[strings.ToLower(k)] = r
		if r > last {
			last = r
		}
	}
	return WithColumn(key, func(rec T) Key {
		if r, ok := lowered[strings.ToLower(value(rec))]; ok {
			return Int(r)
		}
		return Int(last + 1)
	})
}

// Sortable reports whether key names a registered column
func (p *Processor[T]) Sortable(key string) bool {
	_, ok := p.columns[key]
	return ok
}

// Process returns the records that pass the filter and query, ordered by
// sort. The input slice is never modified and the same inputs always give
// the same output.
func (p *Processor[T]) Process(records []T, query, filter string, sort Sort) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if p.matchesFilter(rec, filter) && p.matchesQuery(rec, query) {
			out = append(out, rec)
		}
	}

	column, ok := p.columns[sort.Key]
	if sort.Key == "" || !ok {
		return out
	}

	sign := 1
	if sort.Direction == Desc {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return sign * compareKeys(column(a), column(b))
	})
	return out
}

func (p *Processor[T]) matchesFilter(rec T, filter string) bool {
	if p.filter == nil || filter == "" || strings.EqualFold(filter, FilterAll) {
		return true
	}
	return strings.EqualFold(p.filter(rec), filter)
}

func (p *Processor[T]) matchesQuery(rec T, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range p.search {
		if strings.Contains(strings.ToLower(field(rec)), q) {
			return true
		}
	}
	return false
}

// State is the query/filter/sort state of one admin table
type State struct {
	Query  string `json:"query"`
	Filter string `json:"filter"`
	Sort   Sort   `json:"sort"`
}

// ToggleSort sorts by key ascending, or flips the direction when key is
// already the sort column.
func (s *State) ToggleSort(key string) {
	if s.Sort.Key == key {
		if s.Sort.Direction == Desc {
			s.Sort.Direction = Asc
		} else {
			s.Sort.Direction = Desc
		}
		return
	}
	s.Sort = Sort{Key: key, Direction: Asc}
}

// Reset clears the state, as when navigating away from the page
func (s *State) Reset() {
	*s = State{}
}

// Apply runs p with the state's query, filter and sort
func Apply[T any](p *Processor[T], records []T, s State) []T {
	return p.Process(records, s.Query, s.Filter, s.Sort)
}
