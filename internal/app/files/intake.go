/*
Package files implements the File Intake: accepting uploaded files, storing
their bytes in a blob backend, and announcing each share in the room's
message log.

The intake owns the authoritative file records; the log only carries a
reference. A successful store produces exactly one file-share message.
*/
package files

import (
	"context"
	"mime"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/KYoiRyi/coLAN/internal/app/msglog"
	"github.com/KYoiRyi/coLAN/internal/app/persist"
	"github.com/KYoiRyi/coLAN/internal/app/storage"
	"github.com/KYoiRyi/coLAN/internal/pkg/errs"
	"github.com/KYoiRyi/coLAN/internal/pkg/logx"
	"github.com/KYoiRyi/coLAN/internal/pkg/randx"
)

// filesCollection is the persisted collection name.
const filesCollection = "files"

// Info is the full record of one stored file.
type Info struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	RoomID       string    `json:"room_id"`
	Username     string    `json:"username"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// RoomChecker reports room existence. Implemented by the Room Registry.
type RoomChecker interface {
	Exists(roomID string) bool
}

// MessageAppender posts the file-share announcement into the room's log.
// Implemented by the Message Log.
type MessageAppender interface {
	Append(roomID, username, body string, typ msglog.MessageType, fileRef *msglog.FileRef) (msglog.Message, *errs.CustomError)
}

// Intake accepts uploads, writes the bytes to the blob backend, records the
// file, and announces the share.
type Intake struct {
	mu    sync.RWMutex
	files map[string]*Info

	// order preserves upload order for stable persistence and listings.
	order []string

	rooms    RoomChecker
	messages MessageAppender
	blobs    storage.BlobStore
	store    persist.Store
	logger   zerolog.Logger
}

// NewIntake constructs an Intake and loads previously persisted file records.
func NewIntake(rooms RoomChecker, messages MessageAppender, blobs storage.BlobStore, store persist.Store) (*Intake, error) {
	in := &Intake{
		files:    make(map[string]*Info),
		rooms:    rooms,
		messages: messages,
		blobs:    blobs,
		store:    store,
		logger:   logx.Logger().With().Str("component", "file_intake").Logger(),
	}

	var loaded []Info
	found, err := store.Load(filesCollection, &loaded)
	if err != nil {
		return nil, err
	}

	if found {
		for i := range loaded {
			info := loaded[i]
			in.files[info.Filename] = &info
			in.order = append(in.order, info.Filename)
		}
		in.logger.Info().Int("files", len(loaded)).Msg("Loaded persisted file records.")
	}

	return in, nil
}

// Store accepts one uploaded file: the bytes go to the blob backend under a
// server-generated name, the record is persisted, and a single file-share
// message is appended to the room's log. Any failure after the blob write
// removes the blob again so no orphaned bytes accumulate.
func (in *Intake) Store(ctx context.Context, roomID, username, originalName string, data []byte) (*Info, *errs.CustomError) {
	if roomID == "" || username == "" || originalName == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}
	if len(data) == 0 {
		return nil, errs.NewError(errs.ErrFileMissing)
	}
	if !in.rooms.Exists(roomID) {
		return nil, errs.NewError(errs.ErrRoomNotFound)
	}

	key := randx.StoredFilename(originalName)

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(originalName)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := in.blobs.Put(ctx, key, data, contentType); err != nil {
		in.logger.Error().Err(err).Str("filename", key).Msg("Failed to write file blob.")
		return nil, errs.NewError(errs.ErrFileStorageFailed)
	}

	info := &Info{
		Filename:     key,
		OriginalName: originalName,
		URL:          in.blobs.URL(key),
		Size:         int64(len(data)),
		ContentType:  contentType,
		RoomID:       roomID,
		Username:     username,
		UploadedAt:   time.Now(),
	}

	in.mu.Lock()
	in.files[key] = info
	in.order = append(in.order, key)
	err := in.persistLocked()
	if err != nil {
		delete(in.files, key)
		in.dropFromOrderLocked(key)
	}
	in.mu.Unlock()

	if err != nil {
		in.logger.Error().Err(err).Str("filename", key).Msg("Failed to persist file record.")
		in.discardBlob(ctx, key)
		return nil, errs.NewError(errs.ErrPersistenceFailed)
	}

	msg, appendErr := in.messages.Append(roomID, username, "Shared a file: "+originalName, msglog.TypeFile, &msglog.FileRef{
		OriginalName: info.OriginalName,
		URL:          info.URL,
		Size:         info.Size,
		Filename:     info.Filename,
	})
	if appendErr != nil {
		in.mu.Lock()
		delete(in.files, key)
		in.dropFromOrderLocked(key)
		if perr := in.persistLocked(); perr != nil {
			in.logger.Error().Err(perr).Str("filename", key).Msg("Failed to persist file record rollback.")
		}
		in.mu.Unlock()

		in.discardBlob(ctx, key)
		return nil, appendErr
	}

	in.logger.Info().
		Str("filename", key).
		Str("room_id", roomID).
		Str("username", username).
		Int64("size", info.Size).
		Str("message_id", msg.ID).
		Msg("File stored and announced.")

	return info, nil
}

// Get returns the record of a stored file by its server-generated name.
func (in *Intake) Get(filename string) (*Info, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	info, ok := in.files[filename]
	if !ok {
		return nil, false
	}

	out := *info
	return &out, true
}

// RoomFiles returns the records of all files shared in the room, in upload
// order.
func (in *Intake) RoomFiles(roomID string) []Info {
	in.mu.RLock()
	defer in.mu.RUnlock()

	var out []Info
	for _, key := range in.order {
		if info := in.files[key]; info.RoomID == roomID {
			out = append(out, *info)
		}
	}
	return out
}

// dropFromOrderLocked removes the key from the upload-order index. Callers
// hold the write lock.
func (in *Intake) dropFromOrderLocked(key string) {
	for i, k := range in.order {
		if k == key {
			in.order = append(in.order[:i], in.order[i+1:]...)
			return
		}
	}
}

// discardBlob removes a blob written by a store that later failed.
func (in *Intake) discardBlob(ctx context.Context, key string) {
	if err := in.blobs.Delete(ctx, key); err != nil {
		in.logger.Warn().Err(err).Str("filename", key).Msg("Failed to remove orphaned blob.")
	}
}

// persistLocked writes the full file collection through to durable storage.
func (in *Intake) persistLocked() error {
	out := make([]Info, 0, len(in.order))
	for _, key := range in.order {
		out = append(out, *in.files[key])
	}
	return in.store.Save(filesCollection, out)
}
