// cmd/replay/main.go
//
// Replays a game from its seed and a list of choices, printing the belief
// and search results turn by turn. Useful for checking a reported game or
// trying strategies offline.
//
//   replay -seed 42 -choices 2,2,4,6 [-scenario file.yaml] [-no-color]
//
// Exit status: 0 when the sailor is found, 1 otherwise, 2 on usage or
// configuration errors.

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/robalobadob/searchrescue/internal/game"
	"github.com/robalobadob/searchrescue/internal/rescue"
	"github.com/robalobadob/searchrescue/internal/scenario"
)

func main() {
	seed := flag.Int64("seed", 0, "game seed")
	choices := flag.String("choices", "", "comma-separated choices 1..6, one per turn")
	scenarioPath := flag.String("scenario", "", "scenario YAML (default: built-in)")
	noColor := flag.Bool("no-color", false, "disable coloured output")
	flag.Parse()

	cs, err := parseChoices(*choices)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		fmt.Fprintln(os.Stderr, "usage: replay -seed N -choices 1,4,6 [-scenario file.yaml]")
		os.Exit(2)
	}
	cfg, err := loadConfig(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(2)
	}

	v, err := replay(os.Stdout, aurora.NewAurora(!*noColor), cfg, *seed, cs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(2)
	}
	if v.Status != game.StatusWon {
		os.Exit(1)
	}
}

func loadConfig(path string) (game.Config, error) {
	var (
		sc  *scenario.Scenario
		err error
	)
	if path == "" {
		sc, err = scenario.Default()
	} else {
		sc, err = scenario.Load(path)
	}
	if err != nil {
		return game.Config{}, err
	}
	return sc.Config()
}

// parseChoices reads "1, 4,6" into choices, rejecting anything outside 1..6.
func parseChoices(s string) ([]game.Choice, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("no choices given")
	}
	var out []game.Choice
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("choice %q: not a number", part)
		}
		c := game.Choice(n)
		if _, ok := c.Plan(); !ok {
			return nil, fmt.Errorf("choice %d: must be 1..6", n)
		}
		out = append(out, c)
	}
	return out, nil
}

// replay plays choices against a fresh game and prints each turn to w.
// Choices left over once the game ends are ignored.
func replay(w io.Writer, au aurora.Aurora, cfg game.Config, seed int64, choices []game.Choice) (game.View, error) {
	g, err := game.New(cfg, seed)
	if err != nil {
		return game.View{}, err
	}
	fmt.Fprintf(w, "%s seed=%d turns=%d\n", au.Bold(cfg.Name), seed, cfg.Turns)
	fmt.Fprintf(w, "start   %s\n", formatBelief(au, g.View().Belief))

	for _, c := range choices {
		rep, err := g.Search(c)
		if errors.Is(err, game.ErrFinished) {
			break
		}
		if err != nil {
			return game.View{}, err
		}
		printTurn(w, au, rep)
	}

	v := g.View()
	switch v.Status {
	case game.StatusWon:
		fmt.Fprintln(w, au.Green(fmt.Sprintf("sailor found after %d turn(s)", len(v.History))))
	case game.StatusLost:
		fmt.Fprintln(w, au.Red("out of turns, sailor lost"))
	default:
		fmt.Fprintln(w, au.Yellow(fmt.Sprintf("choices exhausted with %d turn(s) left", v.TurnsLeft)))
		g.Quit()
		v = g.View()
	}
	if v.Reveal != nil {
		fmt.Fprintf(w, "sailor was in area %d at (%d,%d)\n", v.Reveal.Area, v.Reveal.Cell.X, v.Reveal.Cell.Y)
	}
	return v, nil
}

func printTurn(w io.Writer, au aurora.Aurora, rep game.TurnReport) {
	fmt.Fprintf(w, "turn %-2d choice %d  areas %d+%d  ", rep.Turn, rep.Choice, rep.Areas[0], rep.Areas[1])
	for _, o := range rep.Results {
		if o == rescue.Found {
			fmt.Fprint(w, au.Green("FOUND "))
		} else {
			fmt.Fprint(w, au.Blue("miss  "))
		}
	}
	fmt.Fprintf(w, " sep=%.2f/%.2f/%.2f\n", rep.Effectiveness[0], rep.Effectiveness[1], rep.Effectiveness[2])
	fmt.Fprintf(w, "        %s\n", formatBelief(au, rep.Posterior))
}

// formatBelief renders P1..P3, highlighting the most likely area.
func formatBelief(au aurora.Aurora, b rescue.Belief) string {
	best := 0
	for i := range b {
		if b[i] > b[best] {
			best = i
		}
	}
	parts := make([]string, len(b))
	for i, p := range b {
		s := fmt.Sprintf("P%d=%.3f", i+1, p)
		if i == best {
			s = au.Cyan(s).String()
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}
