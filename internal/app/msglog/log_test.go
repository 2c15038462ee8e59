package msglog

import (
	"errors"
	"sync"
	"testing"

	"github.com/KYoiRyi/coLAN/internal/app/persist"
	"github.com/KYoiRyi/coLAN/internal/pkg/errs"
)

type fakeRooms map[string]bool

func (f fakeRooms) Exists(roomID string) bool { return f[roomID] }

func newTestLog(t *testing.T) *Log {
	t.Helper()

	store, err := persist.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	l, err := NewLog(fakeRooms{"room-1": true, "room-2": true}, store)
	if err != nil {
		t.Fatalf("NewLog() error = %v", err)
	}
	return l
}

func TestAppend_PreservesOrder(t *testing.T) {
	l := newTestLog(t)

	bodies := []string{"first", "second", "third"}
	for _, body := range bodies {
		if _, customErr := l.Append("room-1", "alice", body, TypeText, nil); customErr != nil {
			t.Fatalf("Append(%q) error = %v", body, customErr)
		}
	}

	got := l.ReadAll("room-1")
	if len(got) != len(bodies) {
		t.Fatalf("ReadAll() = %d messages, want %d", len(got), len(bodies))
	}
	for i, body := range bodies {
		if got[i].Message != body {
			t.Errorf("ReadAll()[%d].Message = %q, want %q", i, got[i].Message, body)
		}
		if got[i].ID == "" {
			t.Errorf("ReadAll()[%d] has empty id", i)
		}
	}
}

func TestAppend_UnknownRoom(t *testing.T) {
	l := newTestLog(t)

	if _, customErr := l.Append("nope", "alice", "hi", TypeText, nil); customErr == nil || customErr.Code != errs.ErrRoomNotFound {
		t.Errorf("Append(unknown room) error = %v, want code %d", customErr, errs.ErrRoomNotFound)
	}
}

func TestAppend_TypeValidation(t *testing.T) {
	l := newTestLog(t)

	ref := &FileRef{OriginalName: "a.txt", URL: "/uploads/x.txt", Filename: "x.txt"}

	tests := []struct {
		name    string
		typ     MessageType
		fileRef *FileRef
		wantErr bool
	}{
		{"text without ref", TypeText, nil, false},
		{"notification without ref", TypeNotification, nil, false},
		{"file with ref", TypeFile, ref, false},
		{"text with ref", TypeText, ref, true},
		{"file without ref", TypeFile, nil, true},
		{"unknown type", MessageType("bogus"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, customErr := l.Append("room-1", "alice", "hi", tt.typ, tt.fileRef)
			if (customErr != nil) != tt.wantErr {
				t.Errorf("Append() error = %v, wantErr %v", customErr, tt.wantErr)
			}
		})
	}
}

func TestAppend_Concurrent(t *testing.T) {
	l := newTestLog(t)

	const writers = 8
	const perWriter = 10

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if _, customErr := l.Append("room-1", "alice", "hello", TypeText, nil); customErr != nil {
					t.Errorf("Append() error = %v", customErr)
				}
			}
		}()
	}
	wg.Wait()

	if got := len(l.ReadAll("room-1")); got != writers*perWriter {
		t.Errorf("ReadAll() = %d messages, want %d", got, writers*perWriter)
	}
}

func TestReadAll_UnknownRoomIsEmpty(t *testing.T) {
	l := newTestLog(t)

	if got := l.ReadAll("nope"); len(got) != 0 {
		t.Errorf("ReadAll(unknown) = %d messages, want 0", len(got))
	}
}

func TestReadAll_ReturnsCopy(t *testing.T) {
	l := newTestLog(t)

	l.Append("room-1", "alice", "original", TypeText, nil)

	first := l.ReadAll("room-1")
	first[0].Message = "mutated"

	if got := l.ReadAll("room-1")[0].Message; got != "original" {
		t.Errorf("ReadAll() affected by caller mutation, got %q", got)
	}
}

func TestLog_ReloadsPersistedMessages(t *testing.T) {
	store, err := persist.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	rooms := fakeRooms{"room-1": true}

	first, err := NewLog(rooms, store)
	if err != nil {
		t.Fatalf("NewLog() error = %v", err)
	}
	first.Append("room-1", "alice", "survives restart", TypeText, nil)

	second, err := NewLog(rooms, store)
	if err != nil {
		t.Fatalf("NewLog() reload error = %v", err)
	}

	got := second.ReadAll("room-1")
	if len(got) != 1 || got[0].Message != "survives restart" {
		t.Errorf("ReadAll() after reload = %+v, want the persisted message", got)
	}
}

type failingStore struct{ err error }

func (f failingStore) Save(string, any) error         { return f.err }
func (f failingStore) Load(string, any) (bool, error) { return false, nil }

func TestAppend_PersistFailureRollsBack(t *testing.T) {
	l, err := NewLog(fakeRooms{"room-1": true}, failingStore{err: errors.New("disk full")})
	if err != nil {
		t.Fatalf("NewLog() error = %v", err)
	}

	if _, customErr := l.Append("room-1", "alice", "doomed", TypeText, nil); customErr == nil || customErr.Code != errs.ErrPersistenceFailed {
		t.Fatalf("Append() error = %v, want code %d", customErr, errs.ErrPersistenceFailed)
	}

	if got := len(l.ReadAll("room-1")); got != 0 {
		t.Errorf("ReadAll() after failed append = %d messages, want 0", got)
	}
}

func TestCreatePartition_Idempotent(t *testing.T) {
	l := newTestLog(t)

	l.CreatePartition("room-2")
	l.CreatePartition("room-2")

	if got := len(l.order); got != 1 {
		t.Errorf("partition order has %d entries, want 1", got)
	}
}
