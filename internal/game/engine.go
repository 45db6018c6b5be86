// internal/game/engine.go
//
// Round orchestration for a single search-and-rescue game.
// Responsibilities:
//   - Create games from a scenario Config and a seed (fully replayable).
//   - Run every turn in the fixed order:
//       drift belief → drift target → sample effectiveness
//       → one or two search passes → revise belief if nothing was found.
//   - Track state transitions: playing → won/lost/abandoned.
//
// Notes:
//   - One *rand.Rand per game, seeded from Seed, feeds every draw.
//   - The sampled effectiveness is replaced at the start of every turn and
//     revision only sees the realized vector of the turn it belongs to.
//   - IDs are ULIDs so games sort by creation time.
package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/searchrescue/internal/rescue"
)

var (
	ErrFinished      = errors.New("game finished")
	ErrInvalidChoice = errors.New("invalid choice")
)

// Validate checks regions, drift matrix, and the turn budget, and returns
// a copy with the drift rows normalized.
func (c Config) Validate() (Config, error) {
	if err := c.Regions.Validate(); err != nil {
		return c, err
	}
	m, err := c.Drift.Normalize()
	if err != nil {
		return c, err
	}
	c.Drift = m
	if c.Turns <= 0 {
		return c, &rescue.ConfigurationError{Field: "turns", Reason: fmt.Sprintf("must be positive, got %d", c.Turns)}
	}
	return c, nil
}

// New constructs a game and starts its first turn.
// The initial belief is a random simplex draw and the sailor is placed by
// sampling that belief.
func New(cfg Config, seed int64) (*Game, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("game config: %w", err)
	}
	rng := rand.New(rand.NewSource(seed))
	belief := rescue.NewBelief(rng)
	target, err := rescue.PlaceTarget(rng, belief, cfg.Regions)
	if err != nil {
		return nil, err
	}
	g := &Game{
		ID:        ulid.Make().String(),
		Seed:      seed,
		Turn:      1,
		TurnsLeft: cfg.Turns,
		Status:    StatusPlaying,
		Belief:    belief,
		History:   []TurnReport{},
		cfg:       cfg,
		rng:       rng,
		target:    target,
	}
	if err := g.beginTurn(); err != nil {
		return nil, err
	}
	return g, nil
}

// beginTurn applies drift to belief and target, then samples this turn's
// effectiveness. Belief drift and target drift are separate draws.
func (g *Game) beginTurn() error {
	b, err := g.Belief.Propagate(g.cfg.Drift)
	if err != nil {
		return err
	}
	g.Belief = b
	mv, moved, err := g.target.Step(g.rng, g.cfg.Drift)
	if err != nil {
		return err
	}
	if moved {
		log.Debug().Str("gameId", g.ID).Int("turn", g.Turn).
			Int("from", mv.From+1).Int("to", mv.To+1).Msg("sailor drifted")
	}
	g.sampled = rescue.SampleEffectiveness(g.rng, g.cfg.Regions)
	return nil
}

// Search resolves the current turn with the given choice.
//
// Validation rules:
//   - Game must still be playing.
//   - Choice must be 1..6.
//
// State transitions:
//   - Either pass finds the sailor → won.
//   - Otherwise the belief is revised; when the turn budget runs out → lost,
//     else the next turn begins (drift + sampling).
func (g *Game) Search(c Choice) (TurnReport, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status.Finished() {
		return TurnReport{}, ErrFinished
	}
	plan, ok := c.Plan()
	if !ok {
		return TurnReport{}, ErrInvalidChoice
	}

	res, err := plan.Execute(g.rng, g.target, g.cfg.Regions, g.sampled)
	if err != nil {
		return TurnReport{}, err
	}

	rep := TurnReport{
		Turn:          g.Turn,
		Choice:        c,
		Areas:         [2]int{plan.First + 1, plan.Second + 1},
		Results:       res.Outcomes(),
		Effectiveness: res.Realized,
		Prior:         g.Belief,
		Posterior:     g.Belief,
	}

	if res.Found {
		g.Status = StatusWon
	} else {
		post, err := g.Belief.Revise(res.Realized)
		if err != nil {
			return TurnReport{}, err
		}
		g.Belief = post
		rep.Posterior = post
	}
	g.TurnsLeft--

	switch {
	case g.Status == StatusWon:
	case g.TurnsLeft == 0:
		g.Status = StatusLost
	default:
		g.Turn++
		if err := g.beginTurn(); err != nil {
			return TurnReport{}, err
		}
	}

	rep.Status = g.Status
	g.History = append(g.History, rep)
	return rep, nil
}

// Quit abandons a game in progress and reports whether it did.
// Quitting a finished game is a no-op and returns false.
func (g *Game) Quit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status != StatusPlaying {
		return false
	}
	g.Status = StatusAbandoned
	return true
}

// Reveal discloses the sailor's true position once the game is over.
func (g *Game) Reveal() (Reveal, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reveal()
}

func (g *Game) reveal() (Reveal, bool) {
	if !g.Status.Finished() {
		return Reveal{}, false
	}
	return Reveal{Area: g.target.TrueRegion() + 1, Cell: g.target.TrueCell()}, true
}

// View returns a client-safe snapshot.
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := View{
		ID:        g.ID,
		Scenario:  g.cfg.Name,
		Turn:      g.Turn,
		TurnsLeft: g.TurnsLeft,
		Status:    g.Status,
		Belief:    g.Belief,
		History:   append([]TurnReport{}, g.History...),
	}
	if r, ok := g.reveal(); ok {
		seed := g.Seed
		v.Seed, v.Reveal = &seed, &r
	}
	return v
}

// TurnsUsed is the number of resolved turns.
func (g *Game) TurnsUsed() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.History)
}
