/*
Package handler provides HTTP handler functions for reading and appending
room messages.
*/
package handler

import (
	"net/http"
	"strings"

	"github.com/KYoiRyi/coLAN/internal/app/msglog"
	"github.com/KYoiRyi/coLAN/internal/pkg/errs"
	"github.com/KYoiRyi/coLAN/internal/pkg/req"
	"github.com/KYoiRyi/coLAN/internal/pkg/resp"
)

type SendMessageInput struct {
	RoomID   string `json:"room_id"`
	Username string `json:"username"`
	Message  string `json:"message"`
	// Type defaults to text; clients may also post notifications. File
	// messages only ever originate from the upload endpoint.
	Type string `json:"type,omitempty"`
	// SessionID, when present, counts the send as presence activity.
	SessionID string `json:"session_id,omitempty"`
}

// HandleSendMessage appends a message to the room's log.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SendMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		username := strings.TrimSpace(input.Username)
		if input.RoomID == "" || username == "" || strings.TrimSpace(input.Message) == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		typ := msglog.TypeText
		switch input.Type {
		case "", string(msglog.TypeText):
		case string(msglog.TypeNotification):
			typ = msglog.TypeNotification
		default:
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		message, appendErr := deps.Messages.Append(input.RoomID, username, input.Message, typ, nil)
		if appendErr != nil {
			resp.RespondError(w, r, appendErr)
			return
		}

		if input.SessionID != "" {
			deps.Presence.Heartbeat(input.SessionID)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": message,
		})
	}
}

// HandleListMessages returns the full ordered history of one room.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room_id")
		if roomID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if !deps.Rooms.Exists(roomID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": deps.Messages.ReadAll(roomID),
		})
	}
}
