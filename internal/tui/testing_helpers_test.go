package tui

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/restdeck/internal/app"
	"github.com/studiowebux/restdeck/internal/executor"
	"github.com/studiowebux/restdeck/internal/history"
	"github.com/studiowebux/restdeck/internal/registry"
	"github.com/studiowebux/restdeck/internal/types"
)

// stubFetcher answers fetches from canned records; a missing key fails with 500
type stubFetcher struct {
	mu      sync.Mutex
	records map[string][]types.Record
}

func (f *stubFetcher) Fetch(_ context.Context, collection types.Collection) (*types.FetchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, ok := f.records[collection.Key]
	if !ok {
		return nil, &executor.FetchError{
			URL:        collection.URL,
			Status:     500,
			StatusText: "500 Internal Server Error",
			Err:        executor.ErrUnexpectedStatus,
		}
	}
	out := make([]types.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return &types.FetchResult{
		Collection: collection.Key,
		URL:        collection.URL,
		Status:     200,
		StatusText: "200 OK",
		Records:    out,
	}, nil
}

func (f *stubFetcher) fail(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, key)
}

// testRecords returns a few records per default collection
func testRecords() map[string][]types.Record {
	return map[string][]types.Record{
		"users": {
			{"id": int64(1), "name": "Leanne Graham", "username": "Bret", "email": "Sincere@april.biz"},
			{"id": int64(2), "name": "Ervin Howell", "username": "Antonette", "email": "Shanna@melissa.tv"},
		},
		"posts": {
			{"id": int64(1), "userId": int64(1), "title": "sunt aut facere", "body": "quia et suscipit\nsuscipit recusandae"},
			{"id": int64(2), "userId": int64(1), "title": "qui est esse", "body": "est rerum tempore"},
		},
		"todos": {
			{"id": int64(1), "userId": int64(1), "title": "delectus aut autem", "completed": false},
			{"id": int64(2), "userId": int64(1), "title": "quis ut nam facilis", "completed": true},
		},
	}
}

// CreateTestModel creates a Model over the default collections, a stub
// fetcher and a history database in a temporary directory
func CreateTestModel(t *testing.T) (*Model, *stubFetcher) {
	t.Helper()

	reg, err := registry.New(registry.Defaults("http://restdeck.test")...)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}

	hist, err := history.NewManager(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create history manager: %v", err)
	}

	fetcher := &stubFetcher{records: testRecords()}
	ctrl := app.New(reg, fetcher, app.WithRecorder(hist))

	m := New(ctrl, Options{History: hist})
	t.Cleanup(m.Cleanup)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Init()
	finishFetch(t, &m)
	return &m, fetcher
}

// finishFetch completes the most recent fetch cycle synchronously
func finishFetch(t *testing.T, m *Model) {
	t.Helper()
	out := m.ctrl.Load(context.Background(), m.inFlight)
	m.Update(fetchDoneMsg{outcome: out})
}

// PressKey sends one key press and returns the resulting command unexecuted
func PressKey(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(keyMsg(key))
	return cmd
}

// TypeText sends each rune of s as a key press
func TypeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// AssertNoError verifies that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
