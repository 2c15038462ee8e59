/*
Package msglog implements the Message Log: the append-only, per-room ordered
record of chat messages and file-share events.

Insertion order is authoritative; entries are never reordered, deduplicated,
edited, or deleted. Every successful append flushes the log through to the
persistence layer before returning, trading append latency for the guarantee
that an acknowledged message survives a restart.
*/
package msglog

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/KYoiRyi/coLAN/internal/app/persist"
	"github.com/KYoiRyi/coLAN/internal/pkg/errs"
	"github.com/KYoiRyi/coLAN/internal/pkg/logx"
	"github.com/KYoiRyi/coLAN/internal/pkg/randx"
)

// messagesCollection is the persisted collection name.
const messagesCollection = "messages"

// MessageType tags the variant of a message.
type MessageType string

const (
	// TypeText is an ordinary chat message.
	TypeText MessageType = "text"

	// TypeFile is a file-share event; FileInfo is always present.
	TypeFile MessageType = "file"

	// TypeNotification is a system-generated notice, such as a departure.
	TypeNotification MessageType = "notification"
)

// FileRef is the subset of an uploaded file's record embedded in a
// file-share message. The File Intake owns the full record.
type FileRef struct {
	OriginalName string `json:"original_name"`
	URL          string `json:"url"`
	Size         int64  `json:"size,omitempty"`
	Filename     string `json:"filename"`
}

// Message is one immutable entry in a room's log.
type Message struct {
	ID        string      `json:"id"`
	RoomID    string      `json:"room_id"`
	Username  string      `json:"username"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	Type      MessageType `json:"type"`
	FileInfo  *FileRef    `json:"file_info,omitempty"`
}

// RoomChecker reports room existence. Implemented by the Room Registry.
type RoomChecker interface {
	Exists(roomID string) bool
}

// partition is the persisted form of one room's message list.
type partition struct {
	RoomID   string    `json:"room_id"`
	Messages []Message `json:"messages"`
}

// Log is the shared message store, partitioned by room id. The exclusive lock
// covers the room-existence check, the append, and the durability flush, so
// concurrent appends serialize into one authoritative order.
type Log struct {
	mu     sync.RWMutex
	byRoom map[string][]Message

	// order preserves first-seen partition order for stable persistence.
	order []string

	rooms  RoomChecker
	store  persist.Store
	logger zerolog.Logger
}

// NewLog constructs a Log and loads previously persisted partitions.
func NewLog(rooms RoomChecker, store persist.Store) (*Log, error) {
	l := &Log{
		byRoom: make(map[string][]Message),
		rooms:  rooms,
		store:  store,
		logger: logx.Logger().With().Str("component", "message_log").Logger(),
	}

	var loaded []partition
	found, err := store.Load(messagesCollection, &loaded)
	if err != nil {
		return nil, err
	}

	if found {
		total := 0
		for _, part := range loaded {
			l.byRoom[part.RoomID] = part.Messages
			l.order = append(l.order, part.RoomID)
			total += len(part.Messages)
		}
		l.logger.Info().Int("rooms", len(loaded)).Int("messages", total).Msg("Loaded persisted messages.")
	}

	return l, nil
}

// Append adds a message to the tail of the room's log. File messages must
// carry a FileRef; the other variants must not. The append is flushed to
// durable storage before it is reported successful, and is rolled back when
// the flush fails.
func (l *Log) Append(roomID, username, body string, typ MessageType, fileRef *FileRef) (Message, *errs.CustomError) {
	switch typ {
	case TypeText, TypeNotification:
		if fileRef != nil {
			return Message{}, errs.NewError(errs.ErrInvalidParams)
		}
	case TypeFile:
		if fileRef == nil {
			return Message{}, errs.NewError(errs.ErrInvalidParams)
		}
	default:
		return Message{}, errs.NewError(errs.ErrInvalidParams)
	}

	if !l.rooms.Exists(roomID) {
		return Message{}, errs.NewError(errs.ErrRoomNotFound)
	}

	message := Message{
		ID:        randx.MessageID(),
		RoomID:    roomID,
		Username:  username,
		Message:   body,
		Timestamp: time.Now(),
		Type:      typ,
		FileInfo:  fileRef,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byRoom[roomID]; !ok {
		l.order = append(l.order, roomID)
	}
	l.byRoom[roomID] = append(l.byRoom[roomID], message)

	if err := l.persistLocked(); err != nil {
		entries := l.byRoom[roomID]
		l.byRoom[roomID] = entries[:len(entries)-1]
		l.logger.Error().Err(err).Str("room_id", roomID).Msg("Failed to persist message append.")
		return Message{}, errs.NewError(errs.ErrPersistenceFailed)
	}

	return message, nil
}

// ReadAll returns the full ordered history of the room. Unknown rooms yield
// an empty sequence.
func (l *Log) ReadAll(roomID string) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := l.byRoom[roomID]
	out := make([]Message, len(entries))
	copy(out, entries)
	return out
}

// CreatePartition allocates an empty message list for a new room. Appends to
// rooms without a partition still work; this only makes the empty room
// visible in the persisted collection immediately.
func (l *Log) CreatePartition(roomID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byRoom[roomID]; ok {
		return
	}

	l.byRoom[roomID] = []Message{}
	l.order = append(l.order, roomID)

	if err := l.persistLocked(); err != nil {
		l.logger.Error().Err(err).Str("room_id", roomID).Msg("Failed to persist new message partition.")
	}
}

// persistLocked writes every partition through to durable storage.
func (l *Log) persistLocked() error {
	out := make([]partition, 0, len(l.order))
	for _, roomID := range l.order {
		out = append(out, partition{RoomID: roomID, Messages: l.byRoom[roomID]})
	}
	return l.store.Save(messagesCollection, out)
}
