// Package delta implements the append-only change feed federated registries
// poll to stay synchronized.
//
// Every visible change to the agent catalog is recorded as a Delta with a
// strictly increasing sequence number. Consumers remember the highest
// sequence they have applied and ask for everything after it; the gap
// between a consumer's cursor and the feed's lowest retained sequence is
// how a consumer detects it fell behind the retention window.
package delta

import (
	"fmt"
	"time"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
)

// Action is the kind of change a delta records.
type Action string

const (
	// ActionUpsert records that an agent was added or updated. Both cases
	// carry the full post-change record, so consumers never need the
	// distinction.
	ActionUpsert Action = "upsert"
	// ActionRemove records that an agent was removed. The delta carries the
	// last known record so consumers can identify what disappeared without
	// a lookup against a registry that no longer has it.
	ActionRemove Action = "remove"
)

// Valid reports whether a is a recognized action.
func (a Action) Valid() bool {
	return a == ActionUpsert || a == ActionRemove
}

// Delta is one entry in the change feed. Seq and Timestamp are assigned by
// the store at admission; callers supply only the action and the record.
type Delta struct {
	Seq       uint64                `json:"seq"`
	Action    Action                `json:"action"`
	Agent     agentfacts.AgentFacts `json:"agent"`
	Timestamp time.Time             `json:"timestamp"`
}

func (d Delta) String() string {
	return fmt.Sprintf("delta seq=%d action=%s agent=%s", d.Seq, d.Action, d.Agent.ID)
}
