package dispatcher

import (
	"context"
	"testing"

	"github.com/jmehdipour/dialer/internal/logstore"
	"github.com/jmehdipour/dialer/internal/model"
	"github.com/jmehdipour/dialer/internal/telephony"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider fails for numbers listed in failWith, succeeds otherwise.
type fakeProvider struct {
	failWith map[string]error
	placed   []string
}

func (f *fakeProvider) PlaceCall(_ context.Context, to string) (string, error) {
	f.placed = append(f.placed, to)
	if err, ok := f.failWith[to]; ok {
		return "", err
	}
	return "CA-" + to, nil
}

func (f *fakeProvider) ListVerifiedNumbers(context.Context) ([]string, error) {
	return nil, nil
}

func TestDispatchRecordsOneEntryPerNumber(t *testing.T) {
	store := logstore.NewMemoryStore()
	d := New(&fakeProvider{}, store)

	results := d.Dispatch(context.Background(), []string{"+15550000001", "+15550000002"})
	require.Len(t, results, 2)
	assert.Equal(t, model.StatusInitiated, results[0].Status)
	assert.True(t, results[0].Success)
	assert.Equal(t, "CA-+15550000001", results[0].SID)

	logged, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, logged, 2)
}

func TestDispatchIsolatesFailures(t *testing.T) {
	prov := &fakeProvider{failWith: map[string]error{
		"+15550000002": &telephony.ProviderError{Code: 21219, Message: "destination unverified"},
	}}
	store := logstore.NewMemoryStore()
	d := New(prov, store)

	numbers := []string{"+15550000001", "+15550000002", "+15550000003"}
	results := d.Dispatch(context.Background(), numbers)

	// every number was attempted despite the middle failure
	assert.Equal(t, numbers, prov.placed)
	require.Len(t, results, 3)
	assert.Equal(t, model.StatusInitiated, results[0].Status)
	assert.Equal(t, model.StatusFailed, results[1].Status)
	assert.Equal(t, model.StatusInitiated, results[2].Status)

	assert.False(t, results[1].Success)
	assert.Empty(t, results[1].SID)
	assert.Contains(t, results[1].Error, "destination unverified")
	// verification guidance attached at dispatch time
	assert.Contains(t, results[1].Error, "| Tip:")
}

func TestDispatchEntriesShareBatchID(t *testing.T) {
	d := New(&fakeProvider{}, logstore.NewMemoryStore())
	results := d.Dispatch(context.Background(), []string{"+15550000001", "+15550000002"})
	require.Len(t, results, 2)
	assert.NotEmpty(t, results[0].BatchID)
	assert.Equal(t, results[0].BatchID, results[1].BatchID)

	// a new batch gets a new ID
	again := d.Dispatch(context.Background(), []string{"+15550000003"})
	assert.NotEqual(t, results[0].BatchID, again[0].BatchID)
}

type failingStore struct {
	logstore.Store
	err error
}

func (f *failingStore) Append(context.Context, model.CallLogEntry) error { return f.err }

func TestDispatchSurvivesStoreFailure(t *testing.T) {
	d := New(&fakeProvider{}, &failingStore{err: assert.AnError})
	results := d.Dispatch(context.Background(), []string{"+15550000001"})
	// the call still happened and is reported to the caller
	require.Len(t, results, 1)
	assert.Equal(t, model.StatusInitiated, results[0].Status)
}

func TestDispatchEmptyBatch(t *testing.T) {
	d := New(&fakeProvider{}, logstore.NewMemoryStore())
	assert.Empty(t, d.Dispatch(context.Background(), nil))
}
