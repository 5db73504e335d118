package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/restdeck/internal/executor"
	"github.com/studiowebux/restdeck/internal/registry"
	"github.com/studiowebux/restdeck/internal/types"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeResponse struct {
	records []types.Record
	err     error
}

// fakeFetcher serves canned responses; a gate blocks a key until closed
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	gates     map[string]chan struct{}
	calls     map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: make(map[string]fakeResponse),
		gates:     make(map[string]chan struct{}),
		calls:     make(map[string]int),
	}
}

func (f *fakeFetcher) respond(key string, records []types.Record, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key] = fakeResponse{records: records, err: err}
}

func (f *fakeFetcher) gate(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[key] = ch
	return ch
}

func (f *fakeFetcher) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeFetcher) Fetch(ctx context.Context, collection types.Collection) (*types.FetchResult, error) {
	f.mu.Lock()
	resp := f.responses[collection.Key]
	gate := f.gates[collection.Key]
	f.calls[collection.Key]++
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return &types.FetchResult{
		Collection: collection.Key,
		URL:        collection.URL,
		Status:     200,
		Records:    cloneRecords(resp.records),
	}, nil
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []types.HistoryEntry
}

func (r *memoryRecorder) Save(entry types.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryRecorder) all() []types.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.HistoryEntry(nil), r.entries...)
}

func fixtures() map[string][]types.Record {
	return map[string][]types.Record{
		"users": {
			{"id": json.Number("1"), "name": "Leanne Graham", "username": "Bret", "email": "Sincere@april.biz", "phone": "1-770-736-8031", "website": "hildegard.org"},
			{"id": json.Number("2"), "name": "Ervin Howell", "username": "Antonette", "email": "Shanna@melissa.tv", "phone": "010-692-6593", "website": "anastasia.net"},
		},
		"posts": {
			{"id": json.Number("1"), "userId": json.Number("1"), "title": "sunt aut facere", "body": "quia et suscipit"},
			{"id": json.Number("2"), "userId": json.Number("1"), "title": "qui est esse", "body": "est rerum tempore"},
		},
		"todos": {
			{"id": json.Number("1"), "title": "delectus aut autem", "completed": false},
			{"id": json.Number("2"), "title": "quis ut nam", "completed": true},
		},
	}
}

func newTestController(t *testing.T, opts ...Option) (*Controller, *fakeFetcher) {
	t.Helper()
	reg, err := registry.New(registry.Defaults("https://example.test")...)
	require.NoError(t, err)

	fetcher := newFakeFetcher()
	for key, records := range fixtures() {
		fetcher.respond(key, records, nil)
	}
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	return New(reg, fetcher, opts...), fetcher
}

// navigate selects key and completes its fetch
func navigate(t *testing.T, c *Controller, key string) Outcome {
	t.Helper()
	ticket, err := c.SelectCollection(key)
	require.NoError(t, err)
	return c.Load(context.Background(), ticket)
}

func ids(records []types.Record) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		id, _ := r.ID()
		out = append(out, id)
	}
	return out
}

func TestNew_InitialState(t *testing.T) {
	c, fetcher := newTestController(t)

	snap := c.Snapshot()
	assert.Equal(t, "users", snap.Active.Key)
	assert.Equal(t, RequestState{}, snap.Request)
	assert.False(t, snap.Form.Active())
	assert.Empty(t, snap.Records)
	assert.Len(t, snap.Collections, 3)
	assert.Equal(t, 0, fetcher.callCount("users"))
	assert.NotEmpty(t, c.SessionID())
}

func TestSelectCollection_FetchesWithUniqueIDs(t *testing.T) {
	c, _ := newTestController(t)

	for _, key := range c.Registry().Keys() {
		t.Run(key, func(t *testing.T) {
			ticket, err := c.SelectCollection(key)
			require.NoError(t, err)
			assert.Equal(t, RequestState{Loading: true}, c.Request())

			out := c.Load(context.Background(), ticket)
			require.NoError(t, out.Err)
			assert.True(t, out.Applied)
			assert.False(t, out.Discarded)

			snap := c.Snapshot()
			assert.Equal(t, RequestState{}, snap.Request)
			require.NotEmpty(t, snap.Records)

			seen := map[int64]bool{}
			for _, rec := range snap.Records {
				id, ok := rec.ID()
				require.True(t, ok)
				assert.IsType(t, int64(0), rec[types.IDField])
				assert.False(t, seen[id], "duplicate id %d", id)
				seen[id] = true

				for _, field := range snap.Active.DisplayFields() {
					assert.Contains(t, rec, field.Name)
				}
			}
		})
	}
}

func TestSelectCollection_Invalid(t *testing.T) {
	c, fetcher := newTestController(t)
	navigate(t, c, "posts")
	c.StartAdd()
	before := c.Snapshot()

	_, err := c.SelectCollection("comments")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCollection))

	after := c.Snapshot()
	assert.Equal(t, "posts", after.Active.Key)
	assert.Equal(t, before.Request, after.Request)
	assert.Equal(t, FormAdd, after.Form.Mode)
	assert.Equal(t, 1, fetcher.callCount("posts"))
	assert.Equal(t, 0, fetcher.callCount("comments"))
}

func TestSelectCollection_ClearsForm(t *testing.T) {
	c, _ := newTestController(t)
	navigate(t, c, "todos")
	c.StartAdd()
	c.UpdateField("title", "draft")

	_, err := c.SelectCollection("users")
	require.NoError(t, err)
	assert.Equal(t, FormNone, c.Form().Mode)
	assert.Empty(t, c.Form().Pending)
}

func TestSelectCollection_SameKeyRefetches(t *testing.T) {
	c, fetcher := newTestController(t)
	navigate(t, c, "posts")

	c.StartAdd()
	c.UpdateField("title", "local")
	c.UpdateField("body", "only")
	require.NoError(t, c.Submit())
	require.Len(t, c.Records("posts"), 3)

	navigate(t, c, "posts")
	assert.Equal(t, 2, fetcher.callCount("posts"))
	assert.Len(t, c.Records("posts"), 2)
}

func TestLoad_FailureKeepsStore(t *testing.T) {
	c, fetcher := newTestController(t)
	navigate(t, c, "users")
	before := c.Records("users")

	fetcher.respond("users", nil, &executor.FetchError{URL: "https://example.test/users", Status: 500, Err: executor.ErrUnexpectedStatus})
	out := c.Load(context.Background(), c.Reload())

	assert.True(t, out.Applied)
	require.Error(t, out.Err)
	assert.Equal(t, RequestState{Error: "Failed to fetch data."}, c.Request())
	if diff := cmp.Diff(before, c.Records("users")); diff != "" {
		t.Errorf("store changed on failure (-before +after):\n%s", diff)
	}
}

func TestLoad_RejectsBadIDs(t *testing.T) {
	tests := []struct {
		name    string
		records []types.Record
	}{
		{"missing id", []types.Record{{"title": "x"}}},
		{"non numeric id", []types.Record{{"id": "abc"}}},
		{"duplicate id", []types.Record{{"id": json.Number("1")}, {"id": json.Number("1")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fetcher := newTestController(t)
			fetcher.respond("todos", tt.records, nil)

			out := navigate(t, c, "todos")
			require.Error(t, out.Err)
			assert.Equal(t, FetchFailedMessage, c.Request().Error)
			assert.Empty(t, c.Records("todos"))
		})
	}
}

func TestLoad_LateResponseIsDiscarded(t *testing.T) {
	c, fetcher := newTestController(t)
	usersGate := fetcher.gate("users")
	fetcher.respond("users", nil, errors.New("connection reset"))

	usersTicket, err := c.SelectCollection("users")
	require.NoError(t, err)

	done := make(chan Outcome, 1)
	go func() {
		done <- c.Load(context.Background(), usersTicket)
	}()
	require.Eventually(t, func() bool { return fetcher.callCount("users") == 1 }, time.Second, time.Millisecond)

	postsOut := navigate(t, c, "posts")
	require.True(t, postsOut.Applied)
	postsBefore := c.Snapshot()

	close(usersGate)
	usersOut := <-done

	assert.True(t, usersOut.Discarded)
	assert.False(t, usersOut.Applied)
	assert.Error(t, usersOut.Err)

	after := c.Snapshot()
	assert.Equal(t, "posts", after.Active.Key)
	assert.Equal(t, RequestState{}, after.Request)
	if diff := cmp.Diff(postsBefore.Records, after.Records); diff != "" {
		t.Errorf("posts store changed (-before +after):\n%s", diff)
	}
	assert.Empty(t, c.Records("users"))
}

func TestLoad_LateSuccessDoesNotPopulate(t *testing.T) {
	c, fetcher := newTestController(t)
	gate := fetcher.gate("users")

	ticket, err := c.SelectCollection("users")
	require.NoError(t, err)
	done := make(chan Outcome, 1)
	go func() { done <- c.Load(context.Background(), ticket) }()
	require.Eventually(t, func() bool { return fetcher.callCount("users") == 1 }, time.Second, time.Millisecond)

	_, err = c.SelectCollection("todos")
	require.NoError(t, err)
	close(gate)

	out := <-done
	assert.True(t, out.Discarded)
	assert.Empty(t, c.Records("users"))
	assert.Equal(t, RequestState{Loading: true}, c.Request())
}

func TestLoad_SupersededTicketSkipsFetch(t *testing.T) {
	c, fetcher := newTestController(t)

	first, err := c.SelectCollection("users")
	require.NoError(t, err)
	_, err = c.SelectCollection("posts")
	require.NoError(t, err)

	out := c.Load(context.Background(), first)
	assert.True(t, out.Discarded)
	assert.Equal(t, 0, fetcher.callCount("users"))
}

func TestSubmit_Add(t *testing.T) {
	now := time.UnixMilli(2)
	c, _ := newTestController(t, WithClock(func() time.Time { return now }))
	navigate(t, c, "todos")
	before := c.Records("todos")

	c.StartAdd()
	c.UpdateField("title", "new")
	c.UpdateField("completed", false)
	c.UpdateField("id", int64(1))
	require.NoError(t, c.Submit())

	after := c.Records("todos")
	require.Len(t, after, len(before)+1)

	newID, ok := after[0].ID()
	require.True(t, ok)
	assert.NotContains(t, ids(before), newID)
	assert.Equal(t, int64(3), newID, "ids 1 and 2 are taken")
	assert.Equal(t, "new", after[0]["title"])

	if diff := cmp.Diff(before, after[1:]); diff != "" {
		t.Errorf("existing records changed (-before +after):\n%s", diff)
	}
	assert.Equal(t, FormNone, c.Form().Mode)
}

func TestSubmit_AddWithStalledClockStaysUnique(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	c, _ := newTestController(t, WithClock(func() time.Time { return fixed }))
	navigate(t, c, "posts")

	for i := 0; i < 3; i++ {
		c.StartAdd()
		c.UpdateField("title", "t")
		c.UpdateField("body", "b")
		require.NoError(t, c.Submit())
	}

	seen := map[int64]bool{}
	for _, id := range ids(c.Records("posts")) {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 5)
}

func TestSubmit_EditChangesOnlyTarget(t *testing.T) {
	c, _ := newTestController(t)
	navigate(t, c, "users")
	before := c.Records("users")

	require.NoError(t, c.StartEdit(before[1]))
	c.UpdateField("name", "Renamed")
	c.UpdateField("id", int64(42))
	require.NoError(t, c.Submit())

	after := c.Records("users")
	require.Len(t, after, len(before))

	want := before[1].Clone()
	want["name"] = "Renamed"
	if diff := cmp.Diff(want, after[1]); diff != "" {
		t.Errorf("edited record mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before[0], after[0]); diff != "" {
		t.Errorf("untouched record changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, FormNone, c.Form().Mode)
}

func TestSubmit_EditVanishedTargetIsNoop(t *testing.T) {
	c, _ := newTestController(t)
	navigate(t, c, "posts")
	before := c.Records("posts")

	require.NoError(t, c.StartEdit(types.Record{"id": int64(999), "title": "gone", "body": "gone"}))
	c.UpdateField("title", "changed")
	require.NoError(t, c.Submit())

	if diff := cmp.Diff(before, c.Records("posts")); diff != "" {
		t.Errorf("store changed (-before +after):\n%s", diff)
	}
	assert.Equal(t, FormState{}, c.Form())
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		missing []string
	}{
		{"nothing filled", nil, []string{"title", "body"}},
		{"body missing", map[string]any{"title": "t"}, []string{"body"}},
		{"blank body", map[string]any{"title": "t", "body": "   "}, []string{"body"}},
		{"complete", map[string]any{"title": "t", "body": "b"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestController(t)
			navigate(t, c, "posts")
			before := c.Records("posts")

			c.StartAdd()
			for k, v := range tt.values {
				c.UpdateField(k, v)
			}
			err := c.Submit()

			if tt.missing == nil {
				require.NoError(t, err)
				assert.Len(t, c.Records("posts"), len(before)+1)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.missing, verr.Fields)

			assert.Equal(t, FormAdd, c.Form().Mode)
			assert.Len(t, c.Records("posts"), len(before))
		})
	}
}

func TestSubmit_RequiredBooleanMustBeSet(t *testing.T) {
	c, _ := newTestController(t)
	navigate(t, c, "todos")

	c.StartAdd()
	c.UpdateField("title", "t")
	err := c.Submit()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"completed"}, verr.Fields)

	c.UpdateField("completed", false)
	require.NoError(t, c.Submit())
}

func TestSubmit_NoActiveForm(t *testing.T) {
	c, _ := newTestController(t)
	navigate(t, c, "users")
	assert.ErrorIs(t, c.Submit(), ErrNoActiveForm)
}

func TestStartEdit_CopiesRecord(t *testing.T) {
	c, _ := newTestController(t)
	navigate(t, c, "todos")
	record := c.Records("todos")[0]

	require.NoError(t, c.StartEdit(record))
	c.UpdateField("title", "changed")

	assert.Equal(t, "delectus aut autem", record["title"])
	assert.Equal(t, "delectus aut autem", c.Records("todos")[0]["title"])

	assert.ErrorIs(t, c.StartEdit(types.Record{"title": "no id"}), ErrMissingID)
}

func TestCancelForm(t *testing.T) {
	c, _ := newTestController(t)
	navigate(t, c, "posts")
	before := c.Records("posts")

	c.StartAdd()
	c.UpdateField("title", "x")
	c.CancelForm()

	assert.Equal(t, FormState{}, c.Form())
	assert.Equal(t, before, c.Records("posts"))
}

func TestEndToEnd_EditTodo(t *testing.T) {
	c, fetcher := newTestController(t)
	fetcher.respond("todos", []types.Record{{"id": json.Number("1"), "title": "a", "completed": false}}, nil)

	out := navigate(t, c, "todos")
	require.NoError(t, out.Err)
	require.Equal(t, []types.Record{{"id": int64(1), "title": "a", "completed": false}}, c.Records("todos"))

	require.NoError(t, c.StartEdit(c.Records("todos")[0]))
	c.UpdateField("completed", true)
	require.NoError(t, c.Submit())

	want := []types.Record{{"id": int64(1), "title": "a", "completed": true}}
	if diff := cmp.Diff(want, c.Records("todos")); diff != "" {
		t.Errorf("store mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, FormNone, c.Form().Mode)
}

func TestEndToEnd_AddPost(t *testing.T) {
	c, _ := newTestController(t)
	navigate(t, c, "posts")
	before := c.Records("posts")

	c.StartAdd()
	c.UpdateField("title", "Hello")
	require.ErrorIs(t, c.Submit(), ErrValidation)

	c.UpdateField("body", "World")
	require.NoError(t, c.Submit())

	after := c.Records("posts")
	require.Len(t, after, len(before)+1)
	assert.Equal(t, "Hello", after[0]["title"])
	assert.Equal(t, "World", after[0]["body"])
	newID, _ := after[0].ID()
	assert.NotContains(t, ids(before), newID)
}

func TestLoad_RecordsHistory(t *testing.T) {
	rec := &memoryRecorder{}
	c, fetcher := newTestController(t, WithRecorder(rec), WithSessionID("session-1"))

	navigate(t, c, "users")
	fetcher.respond("posts", nil, &executor.FetchError{URL: "https://example.test/posts", Status: 404, Err: executor.ErrUnexpectedStatus})
	navigate(t, c, "posts")

	entries := rec.all()
	require.Len(t, entries, 2)

	assert.Equal(t, "session-1", entries[0].SessionID)
	assert.Equal(t, "users", entries[0].Collection)
	assert.Equal(t, 200, entries[0].Status)
	assert.Equal(t, 2, entries[0].RecordCount)
	assert.Empty(t, entries[0].Error)

	assert.Equal(t, "posts", entries[1].Collection)
	assert.Equal(t, 404, entries[1].Status)
	assert.NotEmpty(t, entries[1].Error)
	assert.False(t, entries[1].Discarded)
}

func TestSnapshot_IsACopy(t *testing.T) {
	c, _ := newTestController(t)
	navigate(t, c, "users")

	snap := c.Snapshot()
	snap.Records[0]["name"] = "mutated"
	assert.NotEqual(t, "mutated", c.Records("users")[0]["name"])
}
