// internal/game/types.go
//
// Type definitions for a search-and-rescue game session.
// Defines:
//   - Status: coarse lifecycle state (playing/won/lost/abandoned).
//   - Choice: the six ways a turn's search effort can be split.
//   - Config: scenario inputs (regions, drift, turn budget).
//   - TurnReport / View: JSON-ready summaries for callers.

package game

import (
	"math/rand"
	"sync"

	"github.com/robalobadob/searchrescue/internal/rescue"
)

// Status of a game.
type Status string

const (
	StatusPlaying   Status = "playing"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusAbandoned Status = "abandoned"
)

// Finished reports whether no further searches are accepted.
func (s Status) Finished() bool { return s != StatusPlaying }

// Choice selects which areas are searched this turn.
//   1..3: search that area twice
//   4:    areas 1 and 2
//   5:    areas 1 and 3
//   6:    areas 2 and 3
type Choice int

// plans maps a Choice to region indices. Index 0 is unused.
var plans = [...]rescue.Plan{
	{},
	{First: 0, Second: 0},
	{First: 1, Second: 1},
	{First: 2, Second: 2},
	{First: 0, Second: 1},
	{First: 0, Second: 2},
	{First: 1, Second: 2},
}

// Plan returns the search plan for c.
func (c Choice) Plan() (rescue.Plan, bool) {
	if c < 1 || int(c) >= len(plans) {
		return rescue.Plan{}, false
	}
	return plans[c], true
}

// Config is what a game needs from its scenario.
type Config struct {
	Name    string
	Regions rescue.Regions
	Drift   rescue.TransitionMatrix
	Turns   int
}

// Reveal is the true position, disclosed once the game is over.
type Reveal struct {
	Area int         `json:"area"` // 1-based
	Cell rescue.Cell `json:"cell"`
}

// TurnReport summarizes one resolved turn.
type TurnReport struct {
	Turn          int                  `json:"turn"`
	Choice        Choice               `json:"choice"`
	Areas         [2]int               `json:"areas"` // 1-based areas searched
	Results       [2]rescue.Outcome    `json:"results"`
	Effectiveness rescue.Effectiveness `json:"effectiveness"` // realized values fed to revision
	Prior         rescue.Belief        `json:"prior"`         // post-drift belief the search acted on
	Posterior     rescue.Belief        `json:"posterior"`
	Status        Status               `json:"status"`
}

// Owner identifies who may act on a game. A guest game started before
// sign-in keeps its anonymous ID, so both may be set once it is claimed.
type Owner struct {
	PlayerID string
	AnonID   string
}

// Allows reports whether a caller with these identities owns the game.
func (o Owner) Allows(playerID, anonID string) bool {
	return (o.PlayerID != "" && o.PlayerID == playerID) || (o.AnonID != "" && o.AnonID == anonID)
}

// View is a snapshot safe to hand to a client. The seed replays the whole
// game, hidden sailor included, so it is withheld until the game is over.
type View struct {
	ID        string        `json:"id"`
	Scenario  string        `json:"scenario"`
	Seed      *int64        `json:"seed,omitempty"` // finished games only
	Turn      int           `json:"turn"`
	TurnsLeft int           `json:"turnsLeft"`
	Status    Status        `json:"status"`
	Belief    rescue.Belief `json:"belief"`
	History   []TurnReport  `json:"history"`
	Reveal    *Reveal       `json:"reveal,omitempty"`
}

// Game holds the state of a single search-and-rescue session.
// The belief and the hidden target are separate objects; nothing on the
// belief path reads the target's coordinates.
type Game struct {
	ID        string
	Seed      int64 // never shown to players while the game is running
	Turn      int   // 1-based number of the turn awaiting a choice
	TurnsLeft int
	Status    Status
	Belief    rescue.Belief
	History   []TurnReport

	// Set by the caller before the game is shared; read-only afterwards.
	Owner  Owner
	Daily  bool // started by the daily challenge
	Ranked bool // server-drawn seed; only these count toward player stats

	cfg     Config
	rng     *rand.Rand
	target  *rescue.Target
	sampled rescue.Effectiveness // this turn's draw; replaced every turn
	mu      sync.Mutex
}
