/*
Package presence implements the Presence Tracker: which users are currently
inside which room, keyed by an opaque session handle.

A session is created atomically on join, refreshed by heartbeats or message
activity, and removed by an explicit leave or by the periodic inactivity
sweep. Presence is purely in-memory state; it is rebuilt from live clients
after a restart and is never persisted.
*/
package presence

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/KYoiRyi/coLAN/internal/pkg/errs"
	"github.com/KYoiRyi/coLAN/internal/pkg/logx"
	"github.com/KYoiRyi/coLAN/internal/pkg/randx"
)

const (
	// InactivityThreshold is how long a session may go without activity
	// before the sweep evicts it.
	InactivityThreshold = 5 * time.Minute

	// SweepInterval is how often the background sweep runs. Worst-case
	// staleness is therefore SweepInterval + InactivityThreshold.
	SweepInterval = 2 * time.Minute
)

// Session is the ephemeral record of one user's presence inside one room.
type Session struct {
	Username     string    `json:"username"`
	SessionID    string    `json:"session_id"`
	RoomID       string    `json:"room_id"`
	RoomName     string    `json:"room_name"`
	JoinedAt     time.Time `json:"joined_at"`
	LastActivity time.Time `json:"last_activity"`
}

// RoomDirectory resolves room ids to their current names. Implemented by the
// Room Registry.
type RoomDirectory interface {
	RoomName(roomID string) (string, bool)
}

// Tracker is the shared presence index. The exclusive lock covers every
// read-modify-write sequence, and the sweep goroutine mutates state under the
// same lock as request handlers.
type Tracker struct {
	mu sync.RWMutex

	// sessions is the global index keyed by session id.
	sessions map[string]*Session

	// byRoom indexes the same sessions per room for member listings.
	byRoom map[string]map[string]*Session

	rooms RoomDirectory

	// onEvict, when set, is invoked for every session removed by the sweep.
	// It runs outside the tracker lock.
	onEvict func(Session)

	stop   chan struct{}
	wg     sync.WaitGroup
	logger zerolog.Logger
}

// NewTracker constructs a Tracker backed by the given room directory.
func NewTracker(rooms RoomDirectory) *Tracker {
	return &Tracker{
		sessions: make(map[string]*Session),
		byRoom:   make(map[string]map[string]*Session),
		rooms:    rooms,
		stop:     make(chan struct{}),
		logger:   logx.Logger().With().Str("component", "presence_tracker").Logger(),
	}
}

// OnEvict registers a hook called for sessions removed by the inactivity
// sweep. Set once during wiring, before StartSweeper.
func (t *Tracker) OnEvict(fn func(Session)) {
	t.onEvict = fn
}

// Join registers a new session in the room. The join is atomic: the session
// is either fully indexed or the call fails. The room name is snapshotted at
// join time. Duplicate display names inside a room are allowed.
func (t *Tracker) Join(roomID, username string) (Session, *errs.CustomError) {
	roomName, ok := t.rooms.RoomName(roomID)
	if !ok {
		return Session{}, errs.NewError(errs.ErrRoomNotFound)
	}

	now := time.Now()
	session := &Session{
		Username:     strings.TrimSpace(username),
		SessionID:    randx.SessionID(),
		RoomID:       roomID,
		RoomName:     roomName,
		JoinedAt:     now,
		LastActivity: now,
	}

	t.mu.Lock()
	t.sessions[session.SessionID] = session

	members, ok := t.byRoom[roomID]
	if !ok {
		members = make(map[string]*Session)
		t.byRoom[roomID] = members
	}
	members[session.SessionID] = session
	t.mu.Unlock()

	t.logger.Info().
		Str("session_id", session.SessionID).
		Str("room_id", roomID).
		Str("username", session.Username).
		Msg("User joined room.")

	return *session, nil
}

// Heartbeat refreshes the session's activity timestamp. Unknown sessions are
// ignored; a heartbeat never fails and never resurrects an expired session.
func (t *Tracker) Heartbeat(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if session, ok := t.sessions[sessionID]; ok {
		session.LastActivity = time.Now()
	}
}

// Leave removes the session from the global index and its room's member list.
// It returns the removed session so callers can emit a departure notice.
func (t *Tracker) Leave(sessionID string) (Session, bool) {
	t.mu.Lock()
	session, ok := t.removeLocked(sessionID)
	t.mu.Unlock()

	if !ok {
		return Session{}, false
	}

	t.logger.Info().
		Str("session_id", sessionID).
		Str("room_id", session.RoomID).
		Str("username", session.Username).
		Msg("User left room.")

	return session, true
}

// RoomMembers returns the sessions currently inside the room.
func (t *Tracker) RoomMembers(roomID string) []Session {
	t.mu.RLock()
	defer t.mu.RUnlock()

	members := t.byRoom[roomID]
	out := make([]Session, 0, len(members))
	for _, session := range members {
		out = append(out, *session)
	}
	return out
}

// OnlineUsers returns every tracked session across all rooms.
func (t *Tracker) OnlineUsers() []Session {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Session, 0, len(t.sessions))
	for _, session := range t.sessions {
		out = append(out, *session)
	}
	return out
}

// IsUsernameTaken reports whether any tracked session, in any room, uses the
// given display name. The comparison is case-insensitive and global: an
// active name in one room blocks joins under that name everywhere.
func (t *Tracker) IsUsernameTaken(username string) bool {
	lowered := strings.ToLower(strings.TrimSpace(username))

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, session := range t.sessions {
		if strings.ToLower(session.Username) == lowered {
			return true
		}
	}
	return false
}

// RoomUserCount returns the number of sessions inside the room.
func (t *Tracker) RoomUserCount(roomID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.byRoom[roomID])
}

// StartSweeper launches the background goroutine that evicts inactive
// sessions every SweepInterval.
func (t *Tracker) StartSweeper() {
	t.wg.Add(1)

	go func() {
		defer t.wg.Done()

		ticker := time.NewTicker(SweepInterval)
		defer ticker.Stop()

		t.logger.Info().
			Dur("interval", SweepInterval).
			Dur("threshold", InactivityThreshold).
			Msg("Presence sweeper started.")

		for {
			select {
			case <-ticker.C:
				t.sweepOnce(time.Now())
			case <-t.stop:
				t.logger.Info().Msg("Presence sweeper stopped.")
				return
			}
		}
	}()
}

// Shutdown stops the sweeper goroutine and waits for it to exit.
func (t *Tracker) Shutdown() {
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
	t.wg.Wait()
}

// sweepOnce removes every session whose last activity is older than the
// inactivity threshold. Eviction is identical to an explicit leave. The
// onEvict hook runs after the lock is released.
func (t *Tracker) sweepOnce(now time.Time) []Session {
	t.mu.Lock()

	var expired []Session
	for sessionID, session := range t.sessions {
		if now.Sub(session.LastActivity) > InactivityThreshold {
			if removed, ok := t.removeLocked(sessionID); ok {
				expired = append(expired, removed)
			}
		}
	}
	t.mu.Unlock()

	for _, session := range expired {
		t.logger.Info().
			Str("session_id", session.SessionID).
			Str("username", session.Username).
			Str("room_id", session.RoomID).
			Msg("Removed inactive user.")

		if t.onEvict != nil {
			t.onEvict(session)
		}
	}

	return expired
}

// removeLocked drops the session from both indexes. Callers hold the write lock.
func (t *Tracker) removeLocked(sessionID string) (Session, bool) {
	session, ok := t.sessions[sessionID]
	if !ok {
		return Session{}, false
	}

	delete(t.sessions, sessionID)

	if members, ok := t.byRoom[session.RoomID]; ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(t.byRoom, session.RoomID)
		}
	}

	return *session, true
}
