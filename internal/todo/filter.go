package todo

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// ErrUnknownFilter is returned by ParseFilter for unrecognised names.
var ErrUnknownFilter = errors.New("unknown status filter")

// Filter selects which tasks are visible by status.
type Filter int

const (
	FilterAll Filter = iota
	FilterToDo
	FilterDone
)

// Filters lists every selection in display order.
var Filters = []Filter{FilterAll, FilterToDo, FilterDone}

func (f Filter) String() string {
	switch f {
	case FilterToDo:
		return StatusToDo
	case FilterDone:
		return StatusDone
	default:
		return "All"
	}
}

// Key returns the short name used in config files, flags and saved UI state.
func (f Filter) Key() string {
	switch f {
	case FilterToDo:
		return "todo"
	case FilterDone:
		return "done"
	default:
		return "all"
	}
}

// Next cycles All -> To Do -> Done -> All.
func (f Filter) Next() Filter {
	return Filters[(int(f)+1)%len(Filters)]
}

// Matches reports whether t belongs to the selection.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterToDo:
		return !t.Completed
	case FilterDone:
		return t.Completed
	default:
		return true
	}
}

// ParseFilter accepts the Key names plus the display labels, case-insensitively.
// An empty string selects all tasks.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "todo", "to do", "to-do":
		return FilterToDo, nil
	case "done":
		return FilterDone, nil
	}
	return FilterAll, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Apply returns the tasks matching f, in their original relative order.
// The result never aliases the input.
func Apply(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Counts holds the per-status totals shown next to each filter option.
type Counts struct {
	All  int
	ToDo int
	Done int
}

// For returns the count for a filter selection.
func (c Counts) For(f Filter) int {
	switch f {
	case FilterToDo:
		return c.ToDo
	case FilterDone:
		return c.Done
	default:
		return c.All
	}
}

// Count tallies tasks by status.
func Count(tasks []Task) Counts {
	c := Counts{All: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Done++
		} else {
			c.ToDo++
		}
	}
	return c
}

// minFuzzyQuery is the shortest query that falls back to fuzzy matching.
// Shorter queries find a scattered subsequence in almost any title.
const minFuzzyQuery = 4

// Search narrows tasks to those whose id, title or description contain query,
// ignoring case. When nothing contains it and the query is long enough, a
// fuzzy match is tried instead so small typos still find the task. Matches
// keep their original order rather than being ranked by score.
func Search(tasks []Task, query string) []Task {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return slices.Clone(tasks)
	}

	haystack := make([]string, len(tasks))
	out := make([]Task, 0, len(tasks))
	for i, t := range tasks {
		haystack[i] = strings.ToLower(strconv.Itoa(t.ID) + " " + t.Title + " " + t.Description)
		if strings.Contains(haystack[i], query) {
			out = append(out, t)
		}
	}
	if len(out) > 0 || utf8.RuneCountInString(query) < minFuzzyQuery {
		return out
	}

	matches := fuzzy.Find(query, haystack)
	indexes := make([]int, 0, len(matches))
	for _, m := range matches {
		indexes = append(indexes, m.Index)
	}
	slices.Sort(indexes)

	for _, i := range indexes {
		out = append(out, tasks[i])
	}
	return out
}
