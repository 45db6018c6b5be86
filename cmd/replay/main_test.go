package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/logrusorgru/aurora"

	"github.com/robalobadob/searchrescue/internal/game"
	"github.com/robalobadob/searchrescue/internal/rescue"
)

func TestParseChoices(t *testing.T) {
	got, err := parseChoices(" 1, 4,6 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []game.Choice{1, 4, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	for _, bad := range []string{"", "0", "7", "1,,2", "two"} {
		if _, err := parseChoices(bad); err == nil {
			t.Fatalf("parseChoices(%q) accepted", bad)
		}
	}
}

func TestDefaultScenarioLoads(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Turns <= 0 || cfg.Name == "" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestReplayPerfectSearch(t *testing.T) {
	r := rescue.Region{Width: 3, Height: 3, MinEffectiveness: 1, MaxEffectiveness: 1}
	cfg := game.Config{Name: "calm", Regions: rescue.Regions{r, r, r}, Drift: rescue.Identity, Turns: 3}

	var out bytes.Buffer
	v, err := replay(&out, aurora.NewAurora(false), cfg, 11, []game.Choice{4, 3, 1, 1})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if v.Status != game.StatusWon || v.Reveal == nil {
		t.Fatalf("view = %+v", v)
	}
	if !strings.Contains(out.String(), "sailor found") {
		t.Fatalf("output:\n%s", out.String())
	}
}

func TestReplayChoicesExhausted(t *testing.T) {
	r := rescue.Region{Width: 3, Height: 3, MinEffectiveness: 0, MaxEffectiveness: 0}
	cfg := game.Config{Name: "fog", Regions: rescue.Regions{r, r, r}, Drift: rescue.Identity, Turns: 5}

	var out bytes.Buffer
	v, err := replay(&out, aurora.NewAurora(false), cfg, 3, []game.Choice{2})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if v.Status != game.StatusAbandoned || !strings.Contains(out.String(), "4 turn(s) left") {
		t.Fatalf("status %s, output:\n%s", v.Status, out.String())
	}
}
