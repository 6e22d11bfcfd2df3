package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idrissbado/taskhub/internal/domain/task"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAuthFormInput(t *testing.T) {
	m := newModel(nil)

	m.Update(keyRunes("a@b.co"))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(keyRunes("hunter22"))

	if m.fields[fieldEmail] != "a@b.co" {
		t.Fatalf("email field: %q", m.fields[fieldEmail])
	}

	if m.fields[fieldPassword] != "hunter22" {
		t.Fatalf("password field: %q", m.fields[fieldPassword])
	}

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})

	if m.fields[fieldPassword] != "hunter2" {
		t.Fatalf("backspace: %q", m.fields[fieldPassword])
	}
}

func TestToggleWaitsForServerAck(t *testing.T) {
	m := newModel(nil)
	m.mode = modeDashboard
	m.tasks = []task.Task{mkTask("Milk", false, task.PriorityMedium)}

	_, cmd := m.updateDashboard(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Fatalf("expected a server command")
	}

	if m.tasks[0].Completed {
		t.Fatalf("local state flipped before the server answered")
	}

	saved := m.tasks[0]
	saved.Completed = true
	m.Update(taskSavedMsg{task: saved})

	if !m.tasks[0].Completed {
		t.Fatalf("acknowledged update was not applied")
	}
}

func TestSavedMessagePrependsNewTask(t *testing.T) {
	m := newModel(nil)
	m.mode = modeDashboard
	m.tasks = []task.Task{mkTask("old", false, task.PriorityLow)}

	m.Update(taskSavedMsg{task: mkTask("new", false, task.PriorityMedium)})

	if len(m.tasks) != 2 || m.tasks[0].Title != "new" {
		t.Fatalf("unexpected list: %v", titles(m.tasks))
	}
}

func TestDeletedMessageRemovesTask(t *testing.T) {
	m := newModel(nil)
	m.mode = modeDashboard
	m.tasks = []task.Task{
		mkTask("a", false, task.PriorityLow),
		mkTask("b", false, task.PriorityLow),
	}
	m.cursor = 1

	m.Update(taskDeletedMsg{id: "id-b"})

	if len(m.tasks) != 1 || m.tasks[0].Title != "a" {
		t.Fatalf("unexpected list: %v", titles(m.tasks))
	}

	if m.cursor != 0 {
		t.Fatalf("cursor not clamped: %d", m.cursor)
	}
}

func TestSearchEntryFiltersLive(t *testing.T) {
	m := newModel(nil)
	m.mode = modeDashboard
	m.tasks = []task.Task{
		mkTask("Milk", false, task.PriorityLow),
		mkTask("Bread", false, task.PriorityLow),
	}

	m.updateDashboard(keyRunes("/"))

	if m.entry != entrySearch {
		t.Fatalf("search entry not active")
	}

	m.Update(keyRunes("bre"))

	got := titles(m.visible())

	if len(got) != 1 || got[0] != "Bread" {
		t.Fatalf("unexpected visible: %v", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEscape})

	if m.entry != entryNone || m.input != "" {
		t.Fatalf("escape did not leave entry mode")
	}
}
