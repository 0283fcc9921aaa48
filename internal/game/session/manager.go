package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cory-johannsen/brawl/internal/game/combat"
)

// PlayerSession tracks a connected participant.
type PlayerSession struct {
	// Participant is the identity the engine sees.
	Participant combat.Participant
	// Inbox buffers match events for the participant's front end.
	Inbox *Inbox
}

// Lobby tracks connected participants and the matches they are committed to.
// It is the admission control consulted by combat.NewMatch through InMatch.
// House participants are never locked, so any number of matches may face the
// house at once. All methods are safe for concurrent use.
type Lobby struct {
	mu      sync.RWMutex
	players map[string]*PlayerSession // identity → session
	matches map[string]string         // identity → match ID
}

// NewLobby creates an empty Lobby.
func NewLobby() *Lobby {
	return &Lobby{
		players: make(map[string]*PlayerSession),
		matches: make(map[string]string),
	}
}

// Connect registers a participant session.
//
// Precondition: p.ID must be non-empty.
// Postcondition: Returns the created session, or an error if p.ID is already connected.
func (l *Lobby) Connect(p combat.Participant) (*PlayerSession, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("session: empty participant id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.players[p.ID]; exists {
		return nil, fmt.Errorf("player %q already connected", p.ID)
	}
	sess := &PlayerSession{Participant: p, Inbox: NewInbox(p.ID, 0)}
	l.players[p.ID] = sess
	return sess, nil
}

// Disconnect removes a participant session and closes its inbox. A match
// lock held by the participant is kept until Release.
//
// Postcondition: Returns an error if id is not connected.
func (l *Lobby) Disconnect(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sess, exists := l.players[id]
	if !exists {
		return fmt.Errorf("player %q not found", id)
	}
	_ = sess.Inbox.Close()
	delete(l.players, id)
	return nil
}

// Player returns the session for id.
//
// Postcondition: Returns (session, true) if found, or (nil, false) otherwise.
func (l *Lobby) Player(id string) (*PlayerSession, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sess, ok := l.players[id]
	return sess, ok
}

// PlayerCount returns the number of connected participants.
func (l *Lobby) PlayerCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.players)
}

// Acquire commits every non-house participant to matchID. Either all are
// committed or none is.
//
// Postcondition: Returns combat.ErrAlreadyInMatch (wrapped) if any participant
// is already committed to a match.
func (l *Lobby) Acquire(matchID string, participants ...combat.Participant) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range participants {
		if p.IsHouse() {
			continue
		}
		if other, busy := l.matches[p.ID]; busy {
			return fmt.Errorf("%w: %s is in match %s", combat.ErrAlreadyInMatch, p.ID, other)
		}
	}
	for _, p := range participants {
		if !p.IsHouse() {
			l.matches[p.ID] = matchID
		}
	}
	return nil
}

// Release frees every participant committed to matchID.
func (l *Lobby) Release(matchID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, m := range l.matches {
		if m == matchID {
			delete(l.matches, id)
		}
	}
}

// InMatch reports whether id is committed to a match.
func (l *Lobby) InMatch(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.matches[id]
	return ok
}

// ActiveMatches returns the sorted IDs of matches holding at least one lock.
func (l *Lobby) ActiveMatches() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := make(map[string]bool)
	for _, m := range l.matches {
		seen[m] = true
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
