/*
Package handler provides the HTTP handler for multipart file uploads.
*/
package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/KYoiRyi/coLAN/internal/pkg/errs"
	"github.com/KYoiRyi/coLAN/internal/pkg/logx"
	"github.com/KYoiRyi/coLAN/internal/pkg/req"
	"github.com/KYoiRyi/coLAN/internal/pkg/resp"
)

// HandleUpload accepts one multipart upload (fields: room_id, username, file),
// stores the bytes, and lets the File Intake announce the share in the room.
func HandleUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		roomID := r.FormValue("room_id")
		username := strings.TrimSpace(r.FormValue("username"))
		if roomID == "" || username == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileMissing))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			logx.Error(err, "Failed to read uploaded file", "filename", header.Filename)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		info, storeErr := deps.Files.Store(r.Context(), roomID, username, header.Filename, data)
		if storeErr != nil {
			resp.RespondError(w, r, storeErr)
			return
		}

		if sessionID := r.FormValue("session_id"); sessionID != "" {
			deps.Presence.Heartbeat(sessionID)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"file": info,
		})
	}
}
