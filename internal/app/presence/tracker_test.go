package presence

import (
	"testing"
	"time"

	"github.com/KYoiRyi/coLAN/internal/pkg/errs"
)

type fakeRooms map[string]string

func (f fakeRooms) RoomName(roomID string) (string, bool) {
	name, ok := f[roomID]
	return name, ok
}

func newTestTracker() *Tracker {
	return NewTracker(fakeRooms{"room-1": "General", "room-2": "Random"})
}

func TestJoin(t *testing.T) {
	tr := newTestTracker()

	session, customErr := tr.Join("room-1", "  alice ")
	if customErr != nil {
		t.Fatalf("Join() error = %v", customErr)
	}

	if session.Username != "alice" {
		t.Errorf("Join() username = %q, want trimmed %q", session.Username, "alice")
	}
	if session.RoomName != "General" {
		t.Errorf("Join() room_name = %q, want %q", session.RoomName, "General")
	}
	if session.SessionID == "" {
		t.Error("Join() returned empty session id")
	}
	if tr.RoomUserCount("room-1") != 1 {
		t.Errorf("RoomUserCount() = %d, want 1", tr.RoomUserCount("room-1"))
	}
}

func TestJoin_UnknownRoom(t *testing.T) {
	tr := newTestTracker()

	if _, customErr := tr.Join("nope", "alice"); customErr == nil || customErr.Code != errs.ErrRoomNotFound {
		t.Errorf("Join(unknown room) error = %v, want code %d", customErr, errs.ErrRoomNotFound)
	}
}

func TestLeave(t *testing.T) {
	tr := newTestTracker()

	session, _ := tr.Join("room-1", "alice")

	removed, ok := tr.Leave(session.SessionID)
	if !ok {
		t.Fatal("Leave() ok = false, want true")
	}
	if removed.Username != "alice" || removed.RoomID != "room-1" {
		t.Errorf("Leave() removed = %+v, want alice in room-1", removed)
	}
	if tr.RoomUserCount("room-1") != 0 {
		t.Errorf("RoomUserCount() after leave = %d, want 0", tr.RoomUserCount("room-1"))
	}

	if _, ok := tr.Leave(session.SessionID); ok {
		t.Error("Leave() second call ok = true, want false")
	}
}

func TestHeartbeat_RefreshesActivity(t *testing.T) {
	tr := newTestTracker()

	session, _ := tr.Join("room-1", "alice")

	tr.mu.Lock()
	tr.sessions[session.SessionID].LastActivity = time.Now().Add(-time.Hour)
	tr.mu.Unlock()

	tr.Heartbeat(session.SessionID)

	tr.mu.RLock()
	last := tr.sessions[session.SessionID].LastActivity
	tr.mu.RUnlock()

	if time.Since(last) > time.Minute {
		t.Errorf("Heartbeat() did not refresh last activity, still %v old", time.Since(last))
	}
}

func TestHeartbeat_UnknownSessionIsNoOp(t *testing.T) {
	tr := newTestTracker()

	tr.Heartbeat("missing")

	if len(tr.OnlineUsers()) != 0 {
		t.Error("Heartbeat(unknown) created a session")
	}
}

func TestIsUsernameTaken(t *testing.T) {
	tr := newTestTracker()

	tr.Join("room-1", "Alice")

	tests := []struct {
		name     string
		username string
		want     bool
	}{
		{"exact match", "Alice", true},
		{"case-insensitive match", "alice", true},
		{"whitespace trimmed", " ALICE ", true},
		{"free name", "bob", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.IsUsernameTaken(tt.username); got != tt.want {
				t.Errorf("IsUsernameTaken(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}

func TestIsUsernameTaken_AcrossRooms(t *testing.T) {
	tr := newTestTracker()

	tr.Join("room-2", "alice")

	if !tr.IsUsernameTaken("alice") {
		t.Error("IsUsernameTaken() = false for name active in another room, want true")
	}
}

func TestSweepOnce_EvictsOnlyExpired(t *testing.T) {
	tr := newTestTracker()

	stale, _ := tr.Join("room-1", "stale")
	fresh, _ := tr.Join("room-1", "fresh")

	tr.mu.Lock()
	tr.sessions[stale.SessionID].LastActivity = time.Now().Add(-InactivityThreshold - time.Second)
	tr.mu.Unlock()

	var evicted []Session
	tr.OnEvict(func(s Session) { evicted = append(evicted, s) })

	expired := tr.sweepOnce(time.Now())

	if len(expired) != 1 || expired[0].SessionID != stale.SessionID {
		t.Fatalf("sweepOnce() expired = %+v, want only the stale session", expired)
	}
	if len(evicted) != 1 || evicted[0].Username != "stale" {
		t.Errorf("onEvict saw %+v, want only the stale session", evicted)
	}
	if tr.RoomUserCount("room-1") != 1 {
		t.Errorf("RoomUserCount() after sweep = %d, want 1", tr.RoomUserCount("room-1"))
	}
	if _, ok := tr.Leave(fresh.SessionID); !ok {
		t.Error("fresh session gone after sweep")
	}
}

func TestRoomMembers(t *testing.T) {
	tr := newTestTracker()

	tr.Join("room-1", "alice")
	tr.Join("room-1", "bob")
	tr.Join("room-2", "carol")

	members := tr.RoomMembers("room-1")
	if len(members) != 2 {
		t.Fatalf("RoomMembers() = %d sessions, want 2", len(members))
	}
	for _, m := range members {
		if m.RoomID != "room-1" {
			t.Errorf("RoomMembers() returned session from room %q", m.RoomID)
		}
	}

	if got := tr.RoomMembers("empty"); len(got) != 0 {
		t.Errorf("RoomMembers(empty room) = %d sessions, want 0", len(got))
	}
}

func TestShutdown_StopsSweeper(t *testing.T) {
	tr := newTestTracker()

	tr.StartSweeper()
	tr.Shutdown()

	// A second shutdown must not panic on the closed stop channel.
	tr.Shutdown()
}
