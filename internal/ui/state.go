// Package ui holds the terminal client: the pure view transforms in
// this file and the bubbletea program in tui.go.
package ui

import (
	"sort"
	"strings"

	"github.com/idrissbado/taskhub/internal/domain/task"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

type Sort string

const (
	SortNone      Sort = "none"
	SortTitleAsc  Sort = "title-asc"
	SortTitleDesc Sort = "title-desc"
)

// View is the full set of display parameters. The zero value shows
// everything in server order.
type View struct {
	Filter Filter
	Search string
	Sort   Sort
}

// ApplyView narrows and orders tasks for display. The input slice is
// never mutated; sorting happens on a copy.
func ApplyView(tasks []task.Task, v View) []task.Task {
	out := make([]task.Task, 0, len(tasks))

	needle := strings.ToLower(strings.TrimSpace(v.Search))

	for _, t := range tasks {
		switch v.Filter {
		case FilterActive:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}

		if needle != "" && !strings.Contains(strings.ToLower(t.Title), needle) {
			continue
		}

		out = append(out, t)
	}

	switch v.Sort {
	case SortTitleAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	case SortTitleDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) > strings.ToLower(out[j].Title)
		})
	}

	return out
}

type TaskStats struct {
	Total          int
	Completed      int
	CompletionRate int
	HighPriority   int
}

// Stats summarizes the unfiltered task list. CompletionRate is a whole
// percentage and reads 0 for an empty list.
func Stats(tasks []task.Task) TaskStats {
	s := TaskStats{Total: len(tasks)}

	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}

		if t.Priority == task.PriorityHigh {
			s.HighPriority++
		}
	}

	if s.Total > 0 {
		s.CompletionRate = s.Completed * 100 / s.Total
	}

	return s
}

// NextFilter and NextSort cycle the display options for single-key
// toggles in the dashboard.
func NextFilter(f Filter) Filter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

func NextSort(s Sort) Sort {
	switch s {
	case SortNone:
		return SortTitleAsc
	case SortTitleAsc:
		return SortTitleDesc
	default:
		return SortNone
	}
}

// NextPriority cycles low -> medium -> high for the priority key.
func NextPriority(p task.Priority) task.Priority {
	switch p {
	case task.PriorityLow:
		return task.PriorityMedium
	case task.PriorityMedium:
		return task.PriorityHigh
	default:
		return task.PriorityLow
	}
}
