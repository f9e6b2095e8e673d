package listview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type booking struct {
	Name   string
	Email  string
	Status string
	Total  float64
	Date   time.Time
}

var statusRanks = map[string]int{"pending": 1, "confirmed": 2, "cancelled": 3}

func newBookingProcessor() *Processor[booking] {
	return New(
		WithSearch(
			func(b booking) string { return b.Name },
			func(b booking) string { return b.Email },
		),
		WithFilter(func(b booking) string { return b.Status }),
		WithColumn("name", func(b booking) Key { return Text(b.Name) }),
		WithColumn("total", func(b booking) Key { return Number(b.Total) }),
		WithColumn("date", func(b booking) Key { return Time(b.Date) }),
		WithRankColumn("status", func(b booking) string { return b.Status }, statusRanks),
	)
}

func names(bs []booking) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Name
	}
	return out
}

func TestProcess_QueryMatchesCaseInsensitiveSubstring(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{{Name: "John Doe"}, {Name: "Amy"}}

	result := p.Process(records, "john", FilterAll, Sort{})

	require.Len(t, result, 1)
	assert.Equal(t, "John Doe", result[0].Name)
}

func TestProcess_QuerySearchesEveryField(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{
		{Name: "Amy", Email: "amy@EXAMPLE.com"},
		{Name: "Bob", Email: "bob@test.org"},
	}

	assert.Equal(t, []string{"Amy"}, names(p.Process(records, "example", "", Sort{})))
}

func TestProcess_NonMatchingQueryIsEmpty(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{{Name: "John Doe"}, {Name: "Amy"}}

	assert.Empty(t, p.Process(records, "zzz", FilterAll, Sort{}))
}

func TestProcess_EmptyQueryReturnsFilterOnlyResult(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{
		{Name: "A", Status: "pending"},
		{Name: "B", Status: "confirmed"},
		{Name: "C", Status: "Pending"},
	}

	assert.Equal(t, []string{"A", "C"}, names(p.Process(records, "", "PENDING", Sort{})))
	assert.Equal(t, []string{"A", "B", "C"}, names(p.Process(records, "", FilterAll, Sort{})))
	assert.Equal(t, []string{"A", "B", "C"}, names(p.Process(records, "", "", Sort{})))
}

func TestProcess_StatusRankOrdering(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{
		{Name: "x", Status: "cancelled"},
		{Name: "y", Status: "pending"},
		{Name: "z", Status: "confirmed"},
	}

	result := p.Process(records, "", FilterAll, Sort{Key: "status", Direction: Asc})

	statuses := make([]string, len(result))
	for i, b := range result {
		statuses[i] = b.Status
	}
	assert.Equal(t, []string{"pending", "confirmed", "cancelled"}, statuses)
}

func TestProcess_UnknownRankSortsLast(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{{Name: "a", Status: "refunded"}, {Name: "b", Status: "cancelled"}}

	assert.Equal(t, []string{"b", "a"}, names(p.Process(records, "", "", Sort{Key: "status", Direction: Asc})))
}

func TestProcess_NumericColumnsCompareNumerically(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{{Name: "a", Total: 100}, {Name: "b", Total: 9}, {Name: "c", Total: 20}}

	assert.Equal(t, []string{"b", "c", "a"}, names(p.Process(records, "", "", Sort{Key: "total", Direction: Asc})))
	assert.Equal(t, []string{"a", "c", "b"}, names(p.Process(records, "", "", Sort{Key: "total", Direction: Desc})))
}

func TestProcess_TextColumnsIgnoreCase(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{{Name: "bob"}, {Name: "Alice"}, {Name: "carol"}}

	assert.Equal(t, []string{"Alice", "bob", "carol"}, names(p.Process(records, "", "", Sort{Key: "name", Direction: Asc})))
}

func TestProcess_TimeColumn(t *testing.T) {
	p := newBookingProcessor()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []booking{
		{Name: "later", Date: now.Add(time.Hour)},
		{Name: "unset"},
		{Name: "now", Date: now},
	}

	assert.Equal(t, []string{"unset", "now", "later"}, names(p.Process(records, "", "", Sort{Key: "date", Direction: Asc})))
}

func TestProcess_TimeColumnKeepsNanoseconds(t *testing.T) {
	p := newBookingProcessor()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	records := []booking{
		{Name: "second", Date: now.Add(time.Nanosecond)},
		{Name: "first", Date: now},
	}

	assert.Equal(t, []string{"first", "second"}, names(p.Process(records, "", "", Sort{Key: "date", Direction: Asc})))
	assert.Equal(t, []string{"second", "first"}, names(p.Process(records, "", "", Sort{Key: "date", Direction: Desc})))
}

func TestProcess_NoSortPreservesInputOrder(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{{Name: "c"}, {Name: "a"}, {Name: "b"}}

	assert.Equal(t, []string{"c", "a", "b"}, names(p.Process(records, "", "", Sort{})))
	assert.Equal(t, []string{"c", "a", "b"}, names(p.Process(records, "", "", Sort{Key: "unknown"})))
}

func TestProcess_TiesKeepInputOrderInBothDirections(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{
		{Name: "first", Status: "pending"},
		{Name: "x", Status: "confirmed"},
		{Name: "second", Status: "pending"},
	}

	asc := names(p.Process(records, "", "", Sort{Key: "status", Direction: Asc}))
	desc := names(p.Process(records, "", "", Sort{Key: "status", Direction: Desc}))

	assert.Equal(t, []string{"first", "second", "x"}, asc)
	assert.Equal(t, []string{"x", "first", "second"}, desc)
}

func TestProcess_ToggledDirectionReversesDistinctKeys(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{{Name: "d", Total: 4}, {Name: "a", Total: 1}, {Name: "c", Total: 3}, {Name: "b", Total: 2}}

	asc := p.Process(records, "", "", Sort{Key: "total", Direction: Asc})
	desc := p.Process(records, "", "", Sort{Key: "total", Direction: Desc})

	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestProcess_IsIdempotentAndPure(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{
		{Name: "b", Status: "cancelled", Total: 3},
		{Name: "a", Status: "pending", Total: 1},
		{Name: "c", Status: "pending", Total: 2},
	}
	original := append([]booking(nil), records...)
	sort := Sort{Key: "total", Direction: Desc}

	first := p.Process(records, "", "pending", sort)
	second := p.Process(records, "", "pending", sort)

	assert.Equal(t, first, second)
	assert.Equal(t, original, records)
}

func TestState_ToggleSortAndReset(t *testing.T) {
	var s State

	s.ToggleSort("total")
	assert.Equal(t, Sort{Key: "total", Direction: Asc}, s.Sort)

	s.ToggleSort("total")
	assert.Equal(t, Desc, s.Sort.Direction)

	s.ToggleSort("total")
	assert.Equal(t, Asc, s.Sort.Direction)

	s.ToggleSort("name")
	assert.Equal(t, Sort{Key: "name", Direction: Asc}, s.Sort)

	s.Query = "x"
	s.Reset()
	assert.Equal(t, State{}, s)
}

func TestApply(t *testing.T) {
	p := newBookingProcessor()
	records := []booking{{Name: "John", Status: "pending"}, {Name: "Johnny", Status: "cancelled"}}

	result := Apply(p, records, State{Query: "john", Filter: "cancelled"})
	assert.Equal(t, []string{"Johnny"}, names(result))
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Desc, ParseDirection("DESC"))
	assert.Equal(t, Asc, ParseDirection("asc"))
	assert.Equal(t, Asc, ParseDirection(""))
}
