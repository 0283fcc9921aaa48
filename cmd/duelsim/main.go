// Package main plays house-vs-house duels offline and prints win and draw
// tallies per mode for balance inspection.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/brawl/content"
	"github.com/cory-johannsen/brawl/internal/config"
	"github.com/cory-johannsen/brawl/internal/game/ai"
	"github.com/cory-johannsen/brawl/internal/game/brawler"
	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/dice"
	"github.com/cory-johannsen/brawl/internal/observability"
	"github.com/cory-johannsen/brawl/internal/scripting"
)

func main() {
	start := time.Now()

	matches := flag.Int("n", 200, "matches per mode")
	modeFlag := flag.String("mode", "", "mode tag to simulate (empty = every mode)")
	level := flag.Int("level", 5, "red side brawler level (1-10)")
	seed := flag.Uint64("seed", 0, "deterministic seed (0 = crypto randomness)")
	rosterDir := flag.String("roster", "", "roster directory (empty = embedded roster)")
	policy := flag.String("policy", "", "embedded Lua policy for the red side (empty = random)")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logger, err := observability.NewLogger(config.LoggingConfig{Level: *logLevel, Format: "console"})
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if !brawler.ValidLevel(*level) {
		logger.Fatal("invalid level", zap.Int("level", *level))
	}

	var reg *brawler.Registry
	if *rosterDir == "" {
		reg, err = brawler.Default()
	} else {
		reg, err = brawler.LoadDirectory(*rosterDir)
	}
	if err != nil {
		logger.Fatal("loading roster", zap.Error(err))
	}

	src := dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}
	roller := dice.NewLoggedRoller(src, observability.Component(logger, "dice"))

	random := ai.NewRandomChooser(roller)
	var red combat.Chooser = random
	if *policy != "" {
		scripts := scripting.NewManager(roller, observability.Component(logger, "scripting"))
		defer scripts.Close()
		if err := scripts.LoadPolicyFS(*policy, content.Policies, "policies", 100000); err != nil {
			logger.Fatal("loading policy", zap.String("policy", *policy), zap.Error(err))
		}
		red = ai.NewScriptedChooser(scripts, *policy, random, observability.Component(logger, "house"))
	}

	modes := combat.ModeTags()
	if *modeFlag != "" {
		if _, err := combat.ModeByTag(combat.ModeTag(*modeFlag)); err != nil {
			logger.Fatal("unknown mode", zap.Error(err))
		}
		modes = []combat.ModeTag{combat.ModeTag(*modeFlag)}
	}

	sim := &Simulator{
		Registry: reg,
		Roller:   roller,
		Red:      red,
		Blue:     random,
		Level:    *level,
		Logger:   observability.Component(logger, "match"),
	}

	ctx := context.Background()
	var tallies []Tally
	for _, mode := range modes {
		t, err := sim.Run(ctx, mode, *matches)
		if err != nil {
			logger.Fatal("simulation failed", zap.String("mode", string(mode)), zap.Error(err))
		}
		tallies = append(tallies, t)
	}

	printTallies(os.Stdout, tallies)
	logger.Info("simulation complete",
		zap.Int("matches_per_mode", *matches),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func printTallies(out io.Writer, tallies []Tally) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tMATCHES\tRED\tBLUE\tDRAWS\tFORFEITS\tAVG ROUNDS\tTOP BRAWLERS")
	for _, t := range tallies {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%.1f\t%s\n",
			t.Mode, t.Matches, t.RedWins, t.BlueWins, t.Draws, t.Forfeits, t.AvgRounds(), topBrawlers(t.Wins, 3))
	}
	_ = w.Flush()
}

// topBrawlers formats the n brawlers with the most wins, ties broken by ID.
func topBrawlers(wins map[string]int, n int) string {
	ids := make([]string, 0, len(wins))
	for id := range wins {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if wins[ids[i]] != wins[ids[j]] {
			return wins[ids[i]] > wins[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s(%d)", id, wins[id])
	}
	return strings.Join(parts, " ")
}
