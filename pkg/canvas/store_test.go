package canvas

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_DispatchAppliesInOrder(t *testing.T) {
	store := NewStore(NewReducer(DefaultLimits()))

	store.Dispatch(SetPieceNumber{Number: 1})
	store.Dispatch(SetPieceNumber{Number: 3})
	store.Dispatch(SetPieceNumber{Number: 2}) // dropped by monotonicity

	assert.Equal(t, 3, store.State().PieceNumber)
}

func TestStore_OnChangeSkipsNoOpActions(t *testing.T) {
	var changes int
	store := NewStore(NewReducer(DefaultLimits()), WithOnChange(func(*State) {
		changes++
	}))

	store.Dispatch(SetPaused{Paused: true})
	store.Dispatch(AdvanceStage{}) // empty buffer: no-op

	assert.Equal(t, 1, changes)
}

func TestStore_SnapshotsAreStableAcrossDispatch(t *testing.T) {
	store := NewStore(NewReducer(DefaultLimits()))
	store.Dispatch(EnqueueWords{Text: "alpha"})

	before := store.State()
	store.Dispatch(EnqueueWords{Text: " beta"})

	require.Len(t, before.Performance.Buffer, 1)
	assert.Equal(t, "alpha", before.Performance.Buffer[0].Text)
	assert.Equal(t, "alpha beta", store.State().Performance.Buffer[0].Text)
}

func TestStore_ConcurrentDispatchIsSerialized(t *testing.T) {
	store := NewStore(NewReducer(DefaultLimits()))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Dispatch(EnqueueWords{Text: "w "})
		}()
	}
	wg.Wait()

	total := 0
	for _, item := range store.State().Performance.Buffer {
		total += item.WordCount
	}
	assert.Equal(t, 50, total, "every dispatch must be applied exactly once")
}
