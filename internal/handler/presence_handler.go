/*
Package handler provides HTTP handler functions for joining and leaving rooms,
heartbeats, and presence listings.
*/
package handler

import (
	"net/http"
	"strings"

	"github.com/KYoiRyi/coLAN/internal/app/msglog"
	"github.com/KYoiRyi/coLAN/internal/pkg/errs"
	"github.com/KYoiRyi/coLAN/internal/pkg/logx"
	"github.com/KYoiRyi/coLAN/internal/pkg/req"
	"github.com/KYoiRyi/coLAN/internal/pkg/resp"
)

type JoinRoomInput struct {
	RoomID   string `json:"room_id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// HandleJoinRoom registers a presence session in the room. Password-gated
// rooms require the correct password; an active display name anywhere on the
// server blocks the join.
func HandleJoinRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input JoinRoomInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		username := strings.TrimSpace(input.Username)
		if input.RoomID == "" || username == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if !deps.Rooms.Exists(input.RoomID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		if !deps.Rooms.CheckPassword(input.RoomID, input.Password) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomPasswordInvalid))
			return
		}

		if deps.Presence.IsUsernameTaken(username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUsernameTaken))
			return
		}

		session, joinErr := deps.Presence.Join(input.RoomID, username)
		if joinErr != nil {
			resp.RespondError(w, r, joinErr)
			return
		}

		joined, _ := deps.Rooms.GetRoom(input.RoomID)

		resp.RespondSuccess(w, r, map[string]any{
			"room":       joined,
			"session":    session,
			"session_id": session.SessionID,
		})
	}
}

type LeaveRoomInput struct {
	SessionID string `json:"session_id"`
}

// HandleLeaveRoom removes the session and posts a departure notice to the
// room the user was in.
func HandleLeaveRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LeaveRoomInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		session, ok := deps.Presence.Leave(input.SessionID)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrSessionNotFound))
			return
		}

		if _, appendErr := deps.Messages.Append(session.RoomID, "System", session.Username+" left the room", msglog.TypeNotification, nil); appendErr != nil {
			logx.Warn("Failed to post departure notice.", "room_id", session.RoomID, "username", session.Username)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"left": true,
		})
	}
}

type HeartbeatInput struct {
	SessionID string `json:"session_id"`
}

// HandleHeartbeat refreshes the session's activity timestamp. Unknown or
// already-expired sessions are acknowledged without effect; the client
// discovers the expiry when its next stateful call fails.
func HandleHeartbeat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input HeartbeatInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.SessionID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		deps.Presence.Heartbeat(input.SessionID)

		resp.RespondSuccess(w, r, map[string]any{
			"alive": true,
		})
	}
}

// HandleOnlineUsers returns every tracked session across all rooms.
func HandleOnlineUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"users": deps.Presence.OnlineUsers(),
		})
	}
}

type ValidateUsernameInput struct {
	Username string `json:"username"`
	DeviceID string `json:"device_id,omitempty"`
}

// HandleValidateUsername reports whether a display name can currently be
// claimed. The check deliberately fails open: a backend hiccup reports the
// name available rather than blocking entry to a LAN chat.
func HandleValidateUsername(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ValidateUsernameInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		username := strings.TrimSpace(input.Username)
		if username == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		available := !deps.Presence.IsUsernameTaken(username) &&
			deps.Identities.UsernameAvailable(r.Context(), username, input.DeviceID)

		resp.RespondSuccess(w, r, map[string]any{
			"available": available,
		})
	}
}
