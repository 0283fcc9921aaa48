package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/game/session"
)

// Prompter drives one participant over a telnet connection. It implements
// combat.Chooser by printing the numbered options and reading a line, and
// combat.Observer by writing each event as it arrives.
//
// When an inbox is attached, events routed to it are written before each
// prompt and on Flush.
type Prompter struct {
	conn   *Conn
	inbox  *session.Inbox
	logger *zap.Logger
}

var (
	_ combat.Chooser  = (*Prompter)(nil)
	_ combat.Observer = (*Prompter)(nil)
)

// NewPrompter returns a Prompter over conn. inbox may be nil.
//
// Precondition: conn must be non-nil.
func NewPrompter(conn *Conn, inbox *session.Inbox, logger *zap.Logger) *Prompter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prompter{conn: conn, inbox: inbox, logger: logger}
}

// Notify writes ev to the connection.
func (p *Prompter) Notify(_ context.Context, _ combat.Participant, ev combat.Event) error {
	return p.conn.WriteLine(RenderEvent(ev))
}

// Flush writes every event buffered in the inbox.
func (p *Prompter) Flush() error {
	if p.inbox == nil {
		return nil
	}
	for _, ev := range p.inbox.Drain() {
		if err := p.conn.WriteLine(RenderEvent(ev)); err != nil {
			return err
		}
	}
	return nil
}

// Choose prompts until a valid answer arrives or ctx ends. A read past the
// deadline is a Timeout; a broken connection is Unreachable.
func (p *Prompter) Choose(ctx context.Context, req combat.ChoiceRequest) combat.Reply {
	if err := p.Flush(); err != nil {
		return combat.Unreachable()
	}
	if err := p.conn.Write([]byte(RenderRequest(req))); err != nil {
		return combat.Unreachable()
	}

	deadline, _ := ctx.Deadline()
	stop := context.AfterFunc(ctx, p.conn.expire)
	defer stop()

	for {
		if ctx.Err() != nil {
			return p.timeUp()
		}
		if err := p.conn.WritePrompt(Colorize(BrightWhite, "> ")); err != nil {
			return combat.Unreachable()
		}
		line, err := p.conn.ReadLineBefore(deadline)
		if err != nil {
			var ne net.Error
			if ctx.Err() != nil || (errors.As(err, &ne) && ne.Timeout()) {
				return p.timeUp()
			}
			p.logger.Debug("prompt read failed", zap.Error(err))
			return combat.Unreachable()
		}
		if reply, ok := ParseReply(line, req); ok {
			return reply
		}
		if err := p.conn.WriteLine(fmt.Sprintf("Choose 1-%d.", len(req.Options))); err != nil {
			return combat.Unreachable()
		}
	}
}

func (p *Prompter) timeUp() combat.Reply {
	_ = p.conn.WriteLine("")
	_ = p.conn.WriteLine(Colorize(BrightRed, "Time is up."))
	return combat.Timeout()
}
