/*
Package room implements the Room Registry: creation, lookup, and listing of
chat rooms with case-insensitive name uniqueness and optional password gating.

The registry owns all Room entities. Room passwords are bcrypt-hashed at rest
and checked through the hash library, never by raw string comparison. Every
mutation is written through to the persistence layer before it is reported as
successful.
*/
package room

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/KYoiRyi/coLAN/internal/app/persist"
	"github.com/KYoiRyi/coLAN/internal/pkg/errs"
	"github.com/KYoiRyi/coLAN/internal/pkg/logx"
	"github.com/KYoiRyi/coLAN/internal/pkg/randx"
)

const (
	// DefaultRoomID is the well-known id of the room created at startup so a
	// fresh install is usable with zero configuration.
	DefaultRoomID = "default-room"

	// DefaultRoomName is the display name of the default room.
	DefaultRoomName = "Lobby"

	// roomsCollection is the persisted collection name.
	roomsCollection = "rooms"
)

// Room is the client-visible snapshot of a chat room. UserCount is always
// recomputed from the Presence Tracker, never stored.
type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
	UserCount   int       `json:"user_count"`
}

// storedRoom is the persisted form of a room, carrying the password hash.
type storedRoom struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	HasPassword  bool      `json:"has_password"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// MemberCounter reports how many sessions are currently inside a room.
// Implemented by the Presence Tracker.
type MemberCounter interface {
	RoomUserCount(roomID string) int
}

// PartitionCreator allocates an empty message partition for a new room.
// Implemented by the Message Log.
type PartitionCreator interface {
	CreatePartition(roomID string)
}

// Registry is the shared room index. All mutations hold the exclusive lock
// around their full read-modify-write sequence, so concurrent creates cannot
// produce duplicate names.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*storedRoom

	// order preserves creation order for stable listings.
	order []string

	store      persist.Store
	counter    MemberCounter
	partitions PartitionCreator
	logger     zerolog.Logger
}

// NewRegistry constructs a Registry and loads previously persisted rooms.
func NewRegistry(store persist.Store) (*Registry, error) {
	r := &Registry{
		rooms:  make(map[string]*storedRoom),
		store:  store,
		logger: logx.Logger().With().Str("component", "room_registry").Logger(),
	}

	var loaded []storedRoom
	found, err := store.Load(roomsCollection, &loaded)
	if err != nil {
		return nil, err
	}

	if found {
		for i := range loaded {
			stored := loaded[i]
			r.rooms[stored.ID] = &stored
			r.order = append(r.order, stored.ID)
		}
		r.logger.Info().Int("rooms", len(loaded)).Msg("Loaded persisted rooms.")
	}

	return r, nil
}

// Bind attaches the collaborators the registry cannot take at construction
// time: the presence counter for live user counts and the message log for
// partition allocation. Called once during wiring, before serving.
func (r *Registry) Bind(counter MemberCounter, partitions PartitionCreator) {
	r.counter = counter
	r.partitions = partitions
}

// CreateRoom creates a room with the trimmed name and optional password.
// Name comparison against existing rooms is case-insensitive; a match fails
// the call and leaves the registry unchanged.
func (r *Registry) CreateRoom(name, password string) (Room, *errs.CustomError) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Room{}, errs.NewError(errs.ErrInvalidParams)
	}

	var passwordHash string
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			r.logger.Error().Err(err).Msg("Failed to hash room password.")
			return Room{}, errs.NewError(errs.ErrUnknown)
		}
		passwordHash = string(hash)
	}

	id, err := randx.RoomID()
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to generate room id.")
		return Room{}, errs.NewError(errs.ErrUnknown)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lowered := strings.ToLower(trimmed)
	for _, existing := range r.rooms {
		if strings.ToLower(existing.Name) == lowered {
			return Room{}, errs.NewError(errs.ErrRoomNameTaken)
		}
	}

	stored := &storedRoom{
		ID:           id,
		Name:         trimmed,
		HasPassword:  password != "",
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	r.rooms[id] = stored
	r.order = append(r.order, id)

	if err := r.persistLocked(); err != nil {
		delete(r.rooms, id)
		r.order = r.order[:len(r.order)-1]
		r.logger.Error().Err(err).Str("room_id", id).Msg("Failed to persist new room.")
		return Room{}, errs.NewError(errs.ErrPersistenceFailed)
	}

	if r.partitions != nil {
		r.partitions.CreatePartition(id)
	}

	r.logger.Info().Str("room_id", id).Str("room_name", trimmed).Bool("has_password", stored.HasPassword).Msg("Room created.")

	return r.snapshotLocked(stored), nil
}

// EnsureDefaultRoom creates the default room if it does not exist yet. The
// check is by well-known id, which makes the call idempotent across restarts.
func (r *Registry) EnsureDefaultRoom() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[DefaultRoomID]; ok {
		return nil
	}

	stored := &storedRoom{
		ID:        DefaultRoomID,
		Name:      DefaultRoomName,
		CreatedAt: time.Now(),
	}

	r.rooms[DefaultRoomID] = stored
	r.order = append(r.order, DefaultRoomID)

	if err := r.persistLocked(); err != nil {
		delete(r.rooms, DefaultRoomID)
		r.order = r.order[:len(r.order)-1]
		return err
	}

	if r.partitions != nil {
		r.partitions.CreatePartition(DefaultRoomID)
	}

	r.logger.Info().Str("room_id", DefaultRoomID).Msg("Default room created.")
	return nil
}

// GetRoom returns the room with the given id and a live user count.
func (r *Registry) GetRoom(id string) (Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.rooms[id]
	if !ok {
		return Room{}, false
	}

	return r.snapshotLocked(stored), true
}

// ListRooms returns all rooms in creation order, each with a freshly computed
// user count.
func (r *Registry) ListRooms() []Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Room, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.snapshotLocked(r.rooms[id]))
	}
	return out
}

// Exists reports whether a room with the given id exists.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[id]
	return ok
}

// RoomName returns the current name of the room, for presence snapshots.
func (r *Registry) RoomName(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.rooms[id]
	if !ok {
		return "", false
	}
	return stored.Name, true
}

// CheckPassword verifies the supplied password against the room. Rooms
// without a password accept any input, including empty.
func (r *Registry) CheckPassword(id, supplied string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.rooms[id]
	if !ok {
		return false
	}

	if !stored.HasPassword {
		return true
	}

	return bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(supplied)) == nil
}

// snapshotLocked builds the client-visible view. Callers hold at least the
// read lock.
func (r *Registry) snapshotLocked(stored *storedRoom) Room {
	count := 0
	if r.counter != nil {
		count = r.counter.RoomUserCount(stored.ID)
	}

	return Room{
		ID:          stored.ID,
		Name:        stored.Name,
		HasPassword: stored.HasPassword,
		CreatedAt:   stored.CreatedAt,
		UserCount:   count,
	}
}

// persistLocked writes the full room collection through to durable storage.
func (r *Registry) persistLocked() error {
	out := make([]storedRoom, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.rooms[id])
	}
	return r.store.Save(roomsCollection, out)
}
