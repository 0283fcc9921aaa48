// Package gameserver is the duel front door: it greets a telnet client,
// bootstraps its profile, and runs house duels through the combat engine.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/brawl/internal/config"
	"github.com/cory-johannsen/brawl/internal/frontend/telnet"
	"github.com/cory-johannsen/brawl/internal/game/brawler"
	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/dice"
	"github.com/cory-johannsen/brawl/internal/game/matchmaking"
	"github.com/cory-johannsen/brawl/internal/game/session"
	"github.com/cory-johannsen/brawl/internal/observability"
	"github.com/cory-johannsen/brawl/internal/storage"
)

// maxNameAttempts bounds the name prompt before the connection is dropped.
const maxNameAttempts = 3

// recentLogs is how many battle log entries the record screen shows.
const recentLogs = 5

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{1,15}$`)

// ErrNameRejected is returned when a client fails to pick a usable name.
var ErrNameRejected = errors.New("gameserver: no usable name")

// Menu entries. The index order is the numbering shown to the client.
var menuOptions = []string{"Duel", "Brawler", "Mode", "Record", "Quit"}

const (
	menuDuel = iota
	menuBrawler
	menuMode
	menuRecord
	menuQuit
)

// DuelHandler runs one telnet client: name, profile, then a menu loop of
// house duels, loadout changes and record lookups.
//
// Precondition: every field is non-nil after construction.
type DuelHandler struct {
	lobby    *session.Lobby
	store    storage.Store
	registry *brawler.Registry
	roller   *dice.Roller
	house    combat.Chooser
	cfg      config.MatchConfig
	logger   *zap.Logger
}

var _ telnet.SessionHandler = (*DuelHandler)(nil)

// NewDuelHandler creates a DuelHandler. house answers every house move.
//
// Precondition: lobby, store, registry, roller and house must be non-nil.
// Postcondition: Returns a non-nil DuelHandler.
func NewDuelHandler(
	lobby *session.Lobby,
	store storage.Store,
	registry *brawler.Registry,
	roller *dice.Roller,
	house combat.Chooser,
	cfg config.MatchConfig,
	logger *zap.Logger,
) *DuelHandler {
	return &DuelHandler{
		lobby:    lobby,
		store:    store,
		registry: registry,
		roller:   roller,
		house:    house,
		cfg:      cfg,
		logger:   observability.Component(logger, "duel"),
	}
}

// DefaultLoadout is the loadout a new profile starts with: Shelly when the
// roster has her, otherwise the first brawler, at level 1 in gem grab.
func DefaultLoadout(reg *brawler.Registry) matchmaking.Loadout {
	id := "shelly"
	if _, err := reg.Get(id); err != nil {
		if ids := reg.IDs(); len(ids) > 0 {
			id = ids[0]
		}
	}
	return matchmaking.Loadout{BrawlerID: id, Level: 1, Mode: combat.ModeGemGrab}
}

// HandleSession implements telnet.SessionHandler.
func (h *DuelHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	if err := conn.WriteLine(telnet.Colorize(telnet.BrightYellow, "Welcome to the arena.")); err != nil {
		return err
	}

	sess, err := h.connect(conn)
	if err != nil {
		return err
	}
	id := sess.Participant.ID
	defer func() {
		if err := h.lobby.Disconnect(id); err != nil {
			h.logger.Warn("disconnect failed", zap.String("participant", id), zap.Error(err))
		}
	}()
	logger := h.logger.With(zap.String("participant", id))

	if err := h.store.EnsureProfile(ctx, id, DefaultLoadout(h.registry)); err != nil {
		return fmt.Errorf("ensuring profile for %s: %w", id, err)
	}
	logger.Info("player connected")

	prompter := telnet.NewPrompter(conn, sess.Inbox, logger)
	for {
		if err := h.showLoadout(ctx, conn, id); err != nil {
			return err
		}
		choice, err := h.pick(conn, "What next?", menuOptions)
		if err != nil {
			return err
		}
		switch choice {
		case menuDuel:
			err = h.duel(ctx, conn, sess, prompter, logger)
		case menuBrawler:
			err = h.chooseBrawler(ctx, conn, id)
		case menuMode:
			err = h.chooseMode(ctx, conn, id)
		case menuRecord:
			err = h.showRecord(ctx, conn, id)
		default:
			_ = conn.WriteLine("Goodbye.")
			logger.Info("player left")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// connect asks for a name until the lobby accepts one.
func (h *DuelHandler) connect(conn *telnet.Conn) (*session.PlayerSession, error) {
	for range maxNameAttempts {
		if err := conn.WritePrompt("Name: "); err != nil {
			return nil, err
		}
		line, err := conn.ReadLine()
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(line)
		if !namePattern.MatchString(name) || strings.EqualFold(name, matchmaking.HouseID) {
			if err := conn.WriteLine("Names are 2-16 letters, digits or underscores."); err != nil {
				return nil, err
			}
			continue
		}
		sess, err := h.lobby.Connect(combat.Participant{ID: name, Name: name, Kind: combat.KindPlayer})
		if err != nil {
			if err := conn.WriteLine(fmt.Sprintf("%s is already in the arena.", name)); err != nil {
				return nil, err
			}
			continue
		}
		return sess, nil
	}
	_ = conn.WriteLine("Too many attempts.")
	return nil, ErrNameRejected
}

// pick shows a numbered menu and reads an answer. "quit" answers the last
// option.
func (h *DuelHandler) pick(conn *telnet.Conn, title string, options []string) (int, error) {
	req := combat.ChoiceRequest{Kind: combat.RequestChallenge, Options: options}
	if err := conn.WriteLine(""); err != nil {
		return 0, err
	}
	if err := conn.WriteLine(telnet.Colorize(telnet.BrightYellow, title)); err != nil {
		return 0, err
	}
	for i, opt := range options {
		if err := conn.Writef("  %s %s\r\n", telnet.Colorf(telnet.BrightCyan, "%d)", i+1), opt); err != nil {
			return 0, err
		}
	}
	for {
		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "> ")); err != nil {
			return 0, err
		}
		line, err := conn.ReadLine()
		if err != nil {
			return 0, err
		}
		reply, ok := telnet.ParseReply(line, req)
		switch {
		case ok && reply.Kind == combat.ReplyRejected:
			return len(options) - 1, nil
		case ok:
			return reply.Index, nil
		}
		if err := conn.WriteLine(fmt.Sprintf("Choose 1-%d.", len(options))); err != nil {
			return 0, err
		}
	}
}

func (h *DuelHandler) showLoadout(ctx context.Context, conn *telnet.Conn, id string) error {
	l, err := matchmaking.ReadLoadout(ctx, h.store, id)
	if err != nil {
		return fmt.Errorf("reading loadout for %s: %w", id, err)
	}
	def, err := h.registry.Get(l.BrawlerID)
	if err != nil {
		return err
	}
	mode, err := combat.ModeByTag(l.Mode)
	if err != nil {
		return err
	}
	return conn.WriteLine(fmt.Sprintf("Brawler: %s (level %d)  Mode: %s", def.Name, l.Level, mode.Name))
}

// duel runs one house match for sess. A declined or timed-out challenge
// returns to the menu with nothing recorded.
func (h *DuelHandler) duel(ctx context.Context, conn *telnet.Conn, sess *session.PlayerSession, prompter *telnet.Prompter, logger *zap.Logger) error {
	me := sess.Participant
	l, err := matchmaking.ReadLoadout(ctx, h.store, me.ID)
	if err != nil {
		return fmt.Errorf("reading loadout for %s: %w", me.ID, err)
	}
	opp, err := matchmaking.PickHouseOpponent(h.registry, h.roller, l.Level)
	if err != nil {
		return err
	}

	intro := fmt.Sprintf("%s (level %d) steps into the arena.", opp.Participant().Name, opp.Level)
	if sp := opp.StarPowerName(); sp != "" {
		intro += fmt.Sprintf(" Star power unlocked: %s.", sp)
	}
	if err := conn.WriteLine(telnet.Colorize(telnet.Magenta, intro)); err != nil {
		return err
	}

	switch err := combat.Invite(ctx, prompter, me, l.Mode, h.cfg.ChoiceTimeout); {
	case errors.Is(err, combat.ErrChallengeRejected), errors.Is(err, combat.ErrChallengeTimeout):
		logger.Info("challenge declined", zap.Error(err))
		return conn.WriteLine("The house shrugs and walks away.")
	case err != nil:
		return err
	}

	m, err := combat.NewMatch(combat.Setup{
		Mode: l.Mode,
		Challenger: combat.Entrant{
			Participant: me,
			BrawlerID:   l.BrawlerID,
			Level:       l.Level,
			Chooser:     prompter,
		},
		Opponent:      opp.Entrant(h.house),
		Registry:      h.registry,
		Roller:        h.roller,
		Reporter:      h.store,
		Observer:      combat.MultiObserver{me.ID: sess.Inbox},
		Logger:        logger,
		ChoiceTimeout: h.cfg.ChoiceTimeout,
		InMatch:       h.lobby.InMatch,
	})
	if err != nil {
		if errors.Is(err, combat.ErrAlreadyInMatch) {
			return conn.WriteLine("You are already in a match.")
		}
		return fmt.Errorf("creating match: %w", err)
	}
	if err := h.lobby.Acquire(m.ID, me, opp.Participant()); err != nil {
		if errors.Is(err, combat.ErrAlreadyInMatch) {
			return conn.WriteLine("You are already in a match.")
		}
		return err
	}
	defer h.lobby.Release(m.ID)

	res, runErr := m.Run(ctx)
	if err := prompter.Flush(); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		if errors.Is(runErr, combat.ErrDeliveryFailure) || ctx.Err() != nil {
			return runErr
		}
		logger.Warn("match ended with an error", zap.String("match_id", m.ID), zap.Error(runErr))
	}
	return conn.WriteLine(summary(res, me.ID))
}

func summary(res combat.Result, id string) string {
	switch res.TagFor(id) {
	case combat.ResultVictory:
		return telnet.Colorf(telnet.BrightGreen, "Victory after %d rounds.", res.Rounds)
	case combat.ResultDefeat:
		return telnet.Colorf(telnet.BrightRed, "Defeat after %d rounds.", res.Rounds)
	default:
		return telnet.Colorf(telnet.Yellow, "Draw after %d rounds.", res.Rounds)
	}
}

// chooseBrawler selects a roster brawler, keeping the level the player has
// for it or starting it at level 1.
func (h *DuelHandler) chooseBrawler(ctx context.Context, conn *telnet.Conn, id string) error {
	current, err := matchmaking.ReadLoadout(ctx, h.store, id)
	if err != nil {
		return err
	}
	ids := h.registry.IDs()
	names := make([]string, len(ids))
	for i, bid := range ids {
		def, err := h.registry.Get(bid)
		if err != nil {
			return err
		}
		names[i] = def.Name
	}
	idx, err := h.pick(conn, "Pick a brawler.", names)
	if err != nil {
		return err
	}
	level := 1
	raw, err := h.store.Get(ctx, id, combat.FieldBrawlers, ids[idx])
	switch {
	case err == nil:
		if n, convErr := strconv.Atoi(raw); convErr == nil && brawler.ValidLevel(n) {
			level = n
		}
	case !errors.Is(err, combat.ErrStatNotFound):
		return err
	}
	return h.store.SetLoadout(ctx, id, matchmaking.Loadout{BrawlerID: ids[idx], Level: level, Mode: current.Mode})
}

func (h *DuelHandler) chooseMode(ctx context.Context, conn *telnet.Conn, id string) error {
	current, err := matchmaking.ReadLoadout(ctx, h.store, id)
	if err != nil {
		return err
	}
	tags := combat.ModeTags()
	names := make([]string, len(tags))
	for i, tag := range tags {
		mode, err := combat.ModeByTag(tag)
		if err != nil {
			return err
		}
		names[i] = mode.Name
	}
	idx, err := h.pick(conn, "Pick a mode.", names)
	if err != nil {
		return err
	}
	current.Mode = tags[idx]
	return h.store.SetLoadout(ctx, id, current)
}

func (h *DuelHandler) showRecord(ctx context.Context, conn *telnet.Conn, id string) error {
	t, err := h.store.Tally(ctx, id)
	if err != nil {
		return err
	}
	if err := conn.WriteLine(fmt.Sprintf("Record: %d wins, %d losses", t.Wins, t.Losses)); err != nil {
		return err
	}
	logs, err := h.store.BattleLogs(ctx, id, recentLogs)
	if err != nil {
		return err
	}
	for _, e := range logs {
		mode := string(e.Mode)
		if m, err := combat.ModeByTag(e.Mode); err == nil {
			mode = m.Name
		}
		line := fmt.Sprintf("  %-7s %s vs %s (%s L%d), %d rounds", e.Result, mode, e.OpponentName, e.BrawlerName, e.BrawlerLevel, e.Rounds)
		if e.ForfeitReason != "" {
			line += ", forfeit: " + e.ForfeitReason
		}
		if err := conn.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}
