package delta

import (
	"sync"
	"testing"
	"time"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
	"github.com/Sharathvc23/nanda-bridge/internal/platform/errors"
)

func testAgent(id string) agentfacts.AgentFacts {
	return agentfacts.AgentFacts{
		ID:          id,
		AgentName:   id,
		Description: "test agent",
		Version:     "1.0.0",
	}
}

func TestNewStoreRejectsNonPositiveCapacity(t *testing.T) {
	for _, max := range []int{0, -1} {
		if _, err := NewStore(max); err == nil {
			t.Fatalf("expected error for max deltas %d", max)
		}
	}
}

func TestAddAssignsSequentialSeqs(t *testing.T) {
	store, err := NewStore(DefaultMaxDeltas)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for i := 1; i <= 5; i++ {
		d, err := store.Add(ActionUpsert, testAgent("a"))
		if err != nil {
			t.Fatalf("add delta %d: %v", i, err)
		}
		if d.Seq != uint64(i) {
			t.Fatalf("expected seq %d, got %d", i, d.Seq)
		}
	}
	if got := store.CurrentSeq(); got != 5 {
		t.Fatalf("expected current seq 5, got %d", got)
	}
	if got := store.NextSeq(); got != 6 {
		t.Fatalf("expected next seq 6, got %d", got)
	}
}

func TestAddRejectsUnknownAction(t *testing.T) {
	store, err := NewStore(DefaultMaxDeltas)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, err = store.Add(Action("rename"), testAgent("a"))
	if err == nil {
		t.Fatal("expected error for unknown action")
	}
	if errors.CodeOf(err) != errors.CodeInvalidAction {
		t.Fatalf("expected invalid action code, got %v", errors.CodeOf(err))
	}
	if got := store.CurrentSeq(); got != 0 {
		t.Fatalf("expected rejected add to not consume a seq, got %d", got)
	}
}

func TestPruneKeepsNewestEntries(t *testing.T) {
	store, err := NewStore(3)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := store.Add(ActionUpsert, testAgent("a")); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if got := store.Len(); got != 3 {
		t.Fatalf("expected 3 retained deltas, got %d", got)
	}
	deltas := store.Since(0)
	if len(deltas) != 3 {
		t.Fatalf("expected 3 deltas since 0, got %d", len(deltas))
	}
	for i, want := range []uint64{3, 4, 5} {
		if deltas[i].Seq != want {
			t.Fatalf("expected seq %d at index %d, got %d", want, i, deltas[i].Seq)
		}
	}

	// Pruned seqs are gone, not renumbered.
	if _, err := store.Get(1); err == nil {
		t.Fatal("expected pruned seq 1 to be not found")
	}
	if got := store.NextSeq(); got != 6 {
		t.Fatalf("expected next seq 6 after prune, got %d", got)
	}
}

func TestSinceReturnsStrictlyAfterCursor(t *testing.T) {
	store, err := NewStore(DefaultMaxDeltas)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := store.Add(ActionUpsert, testAgent("a")); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	tests := []struct {
		since uint64
		want  []uint64
	}{
		{since: 0, want: []uint64{1, 2, 3, 4}},
		{since: 2, want: []uint64{3, 4}},
		{since: 4, want: nil},
		{since: 99, want: nil},
	}
	for _, tc := range tests {
		got := store.Since(tc.since)
		if len(got) != len(tc.want) {
			t.Fatalf("since %d: expected %d deltas, got %d", tc.since, len(tc.want), len(got))
		}
		for i, seq := range tc.want {
			if got[i].Seq != seq {
				t.Fatalf("since %d: expected seq %d at index %d, got %d", tc.since, seq, i, got[i].Seq)
			}
		}
	}
}

func TestGetBySeq(t *testing.T) {
	store, err := NewStore(DefaultMaxDeltas)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Add(ActionUpsert, testAgent("a")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.Add(ActionRemove, testAgent("a")); err != nil {
		t.Fatalf("add: %v", err)
	}

	d, err := store.Get(2)
	if err != nil {
		t.Fatalf("get seq 2: %v", err)
	}
	if d.Action != ActionRemove {
		t.Fatalf("expected remove action, got %s", d.Action)
	}

	for _, seq := range []uint64{0, 3} {
		if _, err := store.Get(seq); errors.CodeOf(err) != errors.CodeNotFound {
			t.Fatalf("get seq %d: expected not found, got %v", seq, err)
		}
	}
}

func TestClearKeepsSequenceCounter(t *testing.T) {
	store, err := NewStore(DefaultMaxDeltas)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := store.Add(ActionUpsert, testAgent("a")); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	store.Clear()
	if got := store.Len(); got != 0 {
		t.Fatalf("expected empty store after clear, got %d", got)
	}
	d, err := store.Add(ActionUpsert, testAgent("a"))
	if err != nil {
		t.Fatalf("add after clear: %v", err)
	}
	if d.Seq != 4 {
		t.Fatalf("expected seq 4 after clear, got %d", d.Seq)
	}
}

func TestTimestampsNeverDecrease(t *testing.T) {
	store, err := NewStore(DefaultMaxDeltas)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Second), base.Add(-time.Hour)}
	i := 0
	store.SetClock(func() time.Time {
		ts := times[i]
		i++
		return ts
	})

	var prev time.Time
	for n := 0; n < len(times); n++ {
		d, err := store.Add(ActionUpsert, testAgent("a"))
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if d.Timestamp.Before(prev) {
			t.Fatalf("timestamp went backwards: %v before %v", d.Timestamp, prev)
		}
		prev = d.Timestamp
	}
	// The backward clock step is clamped to the previous timestamp.
	if !prev.Equal(base.Add(time.Second)) {
		t.Fatalf("expected clamped timestamp %v, got %v", base.Add(time.Second), prev)
	}
}

func TestConcurrentAddsAssignUniqueDenseSeqs(t *testing.T) {
	store, err := NewStore(DefaultMaxDeltas)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	const workers = 8
	const perWorker = 50
	var wg sync.WaitGroup
	seqs := make(chan uint64, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				d, err := store.Add(ActionUpsert, testAgent("a"))
				if err != nil {
					t.Errorf("add: %v", err)
					return
				}
				seqs <- d.Seq
			}
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[uint64]bool, workers*perWorker)
	for seq := range seqs {
		if seen[seq] {
			t.Fatalf("duplicate seq %d", seq)
		}
		seen[seq] = true
	}
	for seq := uint64(1); seq <= workers*perWorker; seq++ {
		if !seen[seq] {
			t.Fatalf("missing seq %d", seq)
		}
	}

	deltas := store.Since(0)
	for i := 1; i < len(deltas); i++ {
		if deltas[i].Seq != deltas[i-1].Seq+1 {
			t.Fatalf("feed not dense at index %d: %d then %d", i, deltas[i-1].Seq, deltas[i].Seq)
		}
	}
}
