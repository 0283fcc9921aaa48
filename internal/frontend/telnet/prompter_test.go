package telnet_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/brawl/internal/frontend/telnet"
	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/session"
	"github.com/cory-johannsen/brawl/internal/testutil"
)

func moveRequest() combat.ChoiceRequest {
	return combat.ChoiceRequest{
		Kind:    combat.RequestMove,
		Mode:    combat.ModeGemGrab,
		Round:   4,
		Options: []string{"Attack", "Collect gem", "Dodge"},
		Moves:   []combat.Move{combat.MoveAttack, combat.MoveObjective, combat.MoveDodge},
		Self: combat.Snapshot{
			Name: "alice", BrawlerName: "Shelly", Level: 3,
			Health: 3200, StaticHealth: 3200, Streak: 2, Gems: 1,
		},
		Opponent: combat.Snapshot{
			Name: "House Colt", BrawlerName: "Colt", Level: 4,
			Health: 500, StaticHealth: 2800, Invincible: true,
		},
	}
}

func newPrompter(t *testing.T, inbox *session.Inbox) (*telnet.Prompter, *testutil.TelnetClient) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close() })
	conn := telnet.NewConn(server, time.Second, time.Second)
	return telnet.NewPrompter(conn, inbox, nil), testutil.NewConnClient(t, client)
}

func choose(p *telnet.Prompter, timeout time.Duration, req combat.ChoiceRequest) <-chan combat.Reply {
	out := make(chan combat.Reply, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		out <- p.Choose(ctx, req)
	}()
	return out
}

func TestPrompter_ChooseByNumber(t *testing.T) {
	p, client := newPrompter(t, nil)
	replies := choose(p, 2*time.Second, moveRequest())

	out := client.ReadUntil("> ", time.Second)
	assert.Contains(t, out, "Gem Grab, round 5")
	assert.Contains(t, out, "You: alice (Shelly L3)")
	assert.Contains(t, out, "super 2/6")
	assert.Contains(t, out, "[invincible]")
	assert.Contains(t, out, "2) Collect gem")

	client.Send("2")
	assert.Equal(t, combat.Choice(1), <-replies)
}

func TestPrompter_ChooseByLabelAfterInvalidInput(t *testing.T) {
	p, client := newPrompter(t, nil)
	replies := choose(p, 2*time.Second, moveRequest())

	client.ReadUntil("> ", time.Second)
	client.Send("9")
	client.ReadUntil("Choose 1-3.", time.Second)
	client.ReadUntil("> ", time.Second)
	client.Send("dodge")
	assert.Equal(t, combat.Choice(2), <-replies)
}

func TestPrompter_ForfeitIsRejected(t *testing.T) {
	p, client := newPrompter(t, nil)
	replies := choose(p, 2*time.Second, moveRequest())

	client.ReadUntil("> ", time.Second)
	client.Send("forfeit")
	assert.Equal(t, combat.Rejected(), <-replies)
}

func TestPrompter_Timeout(t *testing.T) {
	p, client := newPrompter(t, nil)
	replies := choose(p, 100*time.Millisecond, moveRequest())

	client.ReadUntil("Time is up.", 2*time.Second)
	assert.Equal(t, combat.Timeout(), <-replies)
}

func TestPrompter_ClosedConnectionIsUnreachable(t *testing.T) {
	p, client := newPrompter(t, nil)
	client.Close()
	reply := p.Choose(context.Background(), moveRequest())
	assert.Equal(t, combat.ReplyUnreachable, reply.Kind)
}

func TestPrompter_ChallengeAccept(t *testing.T) {
	p, client := newPrompter(t, nil)
	errs := make(chan error, 1)
	go func() {
		errs <- combat.Invite(context.Background(), p, combat.Participant{ID: "alice"}, combat.ModeShowdown, time.Second)
	}()

	out := client.ReadUntil("> ", time.Second)
	assert.Contains(t, out, "challenged to a Showdown duel")
	client.Send("accept")
	assert.NoError(t, <-errs)
}

func TestPrompter_ChallengeDecline(t *testing.T) {
	p, client := newPrompter(t, nil)
	errs := make(chan error, 1)
	go func() {
		errs <- combat.Invite(context.Background(), p, combat.Participant{ID: "alice"}, combat.ModeShowdown, time.Second)
	}()

	client.ReadUntil("> ", time.Second)
	client.Send("2")
	assert.ErrorIs(t, <-errs, combat.ErrChallengeRejected)
}

func TestPrompter_FlushesInboxBeforePrompt(t *testing.T) {
	inbox := session.NewInbox("alice", 8)
	require.NoError(t, inbox.Notify(context.Background(), combat.Participant{ID: "alice"},
		combat.Event{Round: 3, Kind: combat.EventAttack, Narrative: "House Colt hits you for 420."}))

	p, client := newPrompter(t, inbox)
	replies := choose(p, 2*time.Second, moveRequest())

	out := client.ReadUntil("> ", time.Second)
	assert.Contains(t, out, "[  3] House Colt hits you for 420.")
	client.Send("1")
	assert.Equal(t, combat.Choice(0), <-replies)
}

func TestPrompter_Notify(t *testing.T) {
	p, client := newPrompter(t, nil)
	go func() {
		_ = p.Notify(context.Background(), combat.Participant{ID: "alice"},
			combat.Event{Round: 12, Kind: combat.EventMatchOver, Narrative: "alice wins!"})
	}()
	client.ReadUntil("[ 12] alice wins!", time.Second)
}

func TestParseReply(t *testing.T) {
	req := moveRequest()
	cases := []struct {
		in    string
		reply combat.Reply
		ok    bool
	}{
		{"1", combat.Choice(0), true},
		{" 3 ", combat.Choice(2), true},
		{"ATTACK", combat.Choice(0), true},
		{"collect gem", combat.Choice(1), true},
		{"quit", combat.Rejected(), true},
		{"0", combat.Reply{}, false},
		{"4", combat.Reply{}, false},
		{"", combat.Reply{}, false},
		{"jump", combat.Reply{}, false},
	}
	for _, tc := range cases {
		reply, ok := telnet.ParseReply(tc.in, req)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.reply, reply, "input %q", tc.in)
	}
}

// Property: every in-range option number parses to the matching choice.
func TestPropertyParseReplyNumbers(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 5).Draw(rt, "options")
		req := combat.ChoiceRequest{Options: make([]string, n)}
		for i := range req.Options {
			req.Options[i] = "option " + strconv.Itoa(i)
		}
		pick := rapid.IntRange(1, n).Draw(rt, "pick")
		reply, ok := telnet.ParseReply(" "+strconv.Itoa(pick)+" ", req)
		if !ok || reply != combat.Choice(pick-1) {
			rt.Fatalf("pick %d of %d parsed as %+v ok=%v", pick, n, reply, ok)
		}
	})
}
