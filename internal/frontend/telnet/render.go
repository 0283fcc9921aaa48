package telnet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/brawl/internal/game/combat"
)

// RenderEvent formats one match event as a colored line.
func RenderEvent(ev combat.Event) string {
	return Colorize(Dim, fmt.Sprintf("[%3d] ", ev.Round)) + Colorize(EventColor(ev.Kind), ev.Narrative)
}

// RenderStatus formats one combatant's status line.
func RenderStatus(label string, s combat.Snapshot, mode combat.ModeTag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%s L%d)  HP %s",
		Colorize(Bold, label), s.Name, s.BrawlerName, s.Level, healthBar(s.Health, s.StaticHealth))
	fmt.Fprintf(&b, "  super %d/%d", min(s.Streak, combat.SuperStreak), combat.SuperStreak)
	switch mode {
	case combat.ModeGemGrab:
		fmt.Fprintf(&b, "  gems %d", s.Gems)
	case combat.ModeBrawlBall:
		fmt.Fprintf(&b, "  goals %d", s.Goals)
	case combat.ModeShowdown:
		fmt.Fprintf(&b, "  power-ups %d", s.PowerUps)
	}
	if s.SpawnHealth > 0 {
		fmt.Fprintf(&b, "  spawn %d", s.SpawnHealth)
	}
	var flags []string
	if s.Invincible {
		flags = append(flags, "invincible")
	}
	if s.Stunned {
		flags = append(flags, "stunned")
	}
	if s.Respawning {
		flags = append(flags, "respawning")
	}
	if len(flags) > 0 {
		b.WriteString("  " + Colorf(Cyan, "[%s]", strings.Join(flags, ", ")))
	}
	return b.String()
}

func healthBar(health, static int) string {
	color := BrightGreen
	switch {
	case health*4 <= static:
		color = BrightRed
	case health*2 <= static:
		color = Yellow
	}
	return Colorf(color, "%d/%d", health, static)
}

// RenderRequest formats a choice request: the header, both status lines for
// a move request, and the numbered options.
func RenderRequest(req combat.ChoiceRequest) string {
	var b strings.Builder
	modeName := string(req.Mode)
	if m, err := combat.ModeByTag(req.Mode); err == nil {
		modeName = m.Name
	}

	b.WriteString("\r\n")
	switch req.Kind {
	case combat.RequestChallenge:
		b.WriteString(Colorf(BrightYellow, "You are challenged to a %s duel.", modeName))
		b.WriteString("\r\n")
	default:
		b.WriteString(Colorf(BrightYellow, "== %s, round %d ==", modeName, req.Round+1))
		b.WriteString("\r\n")
		b.WriteString(RenderStatus("You:", req.Self, req.Mode))
		b.WriteString("\r\n")
		b.WriteString(RenderStatus("Foe:", req.Opponent, req.Mode))
		b.WriteString("\r\n")
	}
	for i, opt := range req.Options {
		fmt.Fprintf(&b, "  %s %s\r\n", Colorf(BrightCyan, "%d)", i+1), opt)
	}
	return b.String()
}

// ParseReply interprets a typed line against req. It accepts a 1-based option
// number or an option label (case-insensitive). "forfeit" and "quit" reject.
// ok is false when the line matches nothing.
func ParseReply(line string, req combat.ChoiceRequest) (reply combat.Reply, ok bool) {
	in := strings.ToLower(strings.TrimSpace(line))
	if in == "" {
		return combat.Reply{}, false
	}
	switch in {
	case "forfeit", "quit":
		return combat.Rejected(), true
	}
	if n, err := strconv.Atoi(in); err == nil {
		if n >= 1 && n <= len(req.Options) {
			return combat.Choice(n - 1), true
		}
		return combat.Reply{}, false
	}
	for i, opt := range req.Options {
		if strings.ToLower(opt) == in {
			return combat.Choice(i), true
		}
	}
	return combat.Reply{}, false
}
