/*
Package handler provides HTTP handler functions for room creation, lookup, and
listing.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KYoiRyi/coLAN/internal/pkg/errs"
	"github.com/KYoiRyi/coLAN/internal/pkg/req"
	"github.com/KYoiRyi/coLAN/internal/pkg/resp"
)

type CreateRoomInput struct {
	// Name is the display name of the room; uniqueness is case-insensitive.
	Name string `json:"name"`
	// Password optionally gates joining; empty means an open room.
	Password string `json:"password,omitempty"`
}

// HandleCreateRoom creates an HTTP HandlerFunc to process room creation requests.
func HandleCreateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateRoomInput

		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		created, createErr := deps.Rooms.CreateRoom(input.Name, input.Password)
		if createErr != nil {
			resp.RespondError(w, r, createErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"room": created,
		})
	}
}

// HandleListRooms returns every room with its live user count.
func HandleListRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"rooms": deps.Rooms.ListRooms(),
		})
	}
}

// HandleGetRoom returns one room by id.
func HandleGetRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")

		found, ok := deps.Rooms.GetRoom(roomID)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"room": found,
		})
	}
}

// HandleRoomUsers returns the sessions currently inside the room.
func HandleRoomUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")

		if !deps.Rooms.Exists(roomID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"users": deps.Presence.RoomMembers(roomID),
		})
	}
}
