package files

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KYoiRyi/coLAN/internal/app/msglog"
	"github.com/KYoiRyi/coLAN/internal/app/persist"
	"github.com/KYoiRyi/coLAN/internal/app/storage"
	"github.com/KYoiRyi/coLAN/internal/configs"
	"github.com/KYoiRyi/coLAN/internal/pkg/errs"
)

type fakeRooms map[string]bool

func (f fakeRooms) Exists(roomID string) bool { return f[roomID] }

type fixture struct {
	intake    *Intake
	messages  *msglog.Log
	uploadDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := persist.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	rooms := fakeRooms{"room-1": true}

	messages, err := msglog.NewLog(rooms, store)
	if err != nil {
		t.Fatalf("NewLog() error = %v", err)
	}

	uploadDir := t.TempDir()
	blobs, err := storage.NewBlobStore(&configs.AppConfig{
		StorageBackend: configs.StorageBackendLocal,
		UploadDir:      uploadDir,
	})
	if err != nil {
		t.Fatalf("NewBlobStore() error = %v", err)
	}

	intake, err := NewIntake(rooms, messages, blobs, store)
	if err != nil {
		t.Fatalf("NewIntake() error = %v", err)
	}

	return &fixture{intake: intake, messages: messages, uploadDir: uploadDir}
}

func TestStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	data := []byte("hello, lan")
	info, customErr := f.intake.Store(ctx, "room-1", "alice", "notes.txt", data)
	if customErr != nil {
		t.Fatalf("Store() error = %v", customErr)
	}

	if info.OriginalName != "notes.txt" {
		t.Errorf("Store() original_name = %q, want %q", info.OriginalName, "notes.txt")
	}
	if !strings.HasSuffix(info.Filename, ".txt") {
		t.Errorf("Store() filename = %q, want server-generated name keeping .txt", info.Filename)
	}
	if info.Filename == "notes.txt" {
		t.Error("Store() kept the client-supplied filename")
	}
	if info.URL != "/uploads/"+info.Filename {
		t.Errorf("Store() url = %q, want /uploads/%s", info.URL, info.Filename)
	}
	if info.Size != int64(len(data)) {
		t.Errorf("Store() size = %d, want %d", info.Size, len(data))
	}

	written, err := os.ReadFile(filepath.Join(f.uploadDir, info.Filename))
	if err != nil {
		t.Fatalf("blob not written: %v", err)
	}
	if string(written) != string(data) {
		t.Error("blob content differs from upload")
	}
}

func TestStore_AnnouncesExactlyOnce(t *testing.T) {
	f := newFixture(t)

	info, customErr := f.intake.Store(context.Background(), "room-1", "alice", "notes.txt", []byte("x"))
	if customErr != nil {
		t.Fatalf("Store() error = %v", customErr)
	}

	history := f.messages.ReadAll("room-1")
	if len(history) != 1 {
		t.Fatalf("room log has %d messages after one upload, want 1", len(history))
	}

	msg := history[0]
	if msg.Type != msglog.TypeFile {
		t.Errorf("announcement type = %q, want %q", msg.Type, msglog.TypeFile)
	}
	if msg.Message != "Shared a file: notes.txt" {
		t.Errorf("announcement body = %q, want %q", msg.Message, "Shared a file: notes.txt")
	}
	if msg.FileInfo == nil {
		t.Fatal("announcement carries no file reference")
	}
	if msg.FileInfo.Filename != info.Filename || msg.FileInfo.URL != info.URL {
		t.Errorf("file reference = %+v, want filename %q url %q", msg.FileInfo, info.Filename, info.URL)
	}
}

func TestStore_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		roomID       string
		username     string
		originalName string
		data         []byte
		wantCode     int
	}{
		{"unknown room", "nope", "alice", "a.txt", []byte("x"), errs.ErrRoomNotFound},
		{"empty file", "room-1", "alice", "a.txt", nil, errs.ErrFileMissing},
		{"missing username", "room-1", "", "a.txt", []byte("x"), errs.ErrInvalidParams},
		{"missing name", "room-1", "alice", "", []byte("x"), errs.ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, customErr := f.intake.Store(ctx, tt.roomID, tt.username, tt.originalName, tt.data)
			if customErr == nil || customErr.Code != tt.wantCode {
				t.Errorf("Store() error = %v, want code %d", customErr, tt.wantCode)
			}
		})
	}
}

func TestGet(t *testing.T) {
	f := newFixture(t)

	info, customErr := f.intake.Store(context.Background(), "room-1", "alice", "notes.txt", []byte("x"))
	if customErr != nil {
		t.Fatalf("Store() error = %v", customErr)
	}

	got, ok := f.intake.Get(info.Filename)
	if !ok {
		t.Fatal("Get() ok = false for stored file")
	}
	if got.OriginalName != "notes.txt" {
		t.Errorf("Get() original_name = %q, want %q", got.OriginalName, "notes.txt")
	}

	if _, ok := f.intake.Get("missing"); ok {
		t.Error("Get(missing) ok = true, want false")
	}
}

func TestRoomFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	names := []string{"a.txt", "b.txt", "c.txt"}
	for _, name := range names {
		if _, customErr := f.intake.Store(ctx, "room-1", "alice", name, []byte("x")); customErr != nil {
			t.Fatalf("Store(%q) error = %v", name, customErr)
		}
	}

	got := f.intake.RoomFiles("room-1")
	if len(got) != len(names) {
		t.Fatalf("RoomFiles() = %d records, want %d", len(got), len(names))
	}
	for i, name := range names {
		if got[i].OriginalName != name {
			t.Errorf("RoomFiles()[%d].OriginalName = %q, want %q", i, got[i].OriginalName, name)
		}
	}

	if other := f.intake.RoomFiles("other"); len(other) != 0 {
		t.Errorf("RoomFiles(other) = %d records, want 0", len(other))
	}
}

func TestIntake_ReloadsPersistedRecords(t *testing.T) {
	dataDir := t.TempDir()
	uploadDir := t.TempDir()

	store, err := persist.NewFileStore(dataDir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	rooms := fakeRooms{"room-1": true}
	messages, err := msglog.NewLog(rooms, store)
	if err != nil {
		t.Fatalf("NewLog() error = %v", err)
	}
	blobs, err := storage.NewBlobStore(&configs.AppConfig{
		StorageBackend: configs.StorageBackendLocal,
		UploadDir:      uploadDir,
	})
	if err != nil {
		t.Fatalf("NewBlobStore() error = %v", err)
	}

	first, err := NewIntake(rooms, messages, blobs, store)
	if err != nil {
		t.Fatalf("NewIntake() error = %v", err)
	}
	info, customErr := first.Store(context.Background(), "room-1", "alice", "durable.txt", []byte("x"))
	if customErr != nil {
		t.Fatalf("Store() error = %v", customErr)
	}

	second, err := NewIntake(rooms, messages, blobs, store)
	if err != nil {
		t.Fatalf("NewIntake() reload error = %v", err)
	}

	got, ok := second.Get(info.Filename)
	if !ok {
		t.Fatal("Get() after reload ok = false")
	}
	if got.OriginalName != "durable.txt" {
		t.Errorf("reloaded record original_name = %q, want %q", got.OriginalName, "durable.txt")
	}
}
