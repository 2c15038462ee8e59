/*
Package handler provides HTTP handler functions for the identity endpoints:
temporary login, permanent login, conversion, and logout.
*/
package handler

import (
	"net/http"

	"github.com/KYoiRyi/coLAN/internal/app/identity"
	"github.com/KYoiRyi/coLAN/internal/pkg/req"
	"github.com/KYoiRyi/coLAN/internal/pkg/resp"
)

// identityPayload is the client-facing view of an identity. The access token
// is the bearer credential for subsequent identity calls.
func identityPayload(ident *identity.Identity) map[string]any {
	return map[string]any{
		"id":           ident.ID,
		"username":     ident.Username,
		"email":        ident.Email,
		"access_token": ident.AccessToken,
		"is_temporary": ident.IsTemporary,
		"device_id":    ident.DeviceID,
		"last_login":   ident.LastLogin,
		"created_at":   ident.CreatedAt,
	}
}

type TempLoginInput struct {
	Username string `json:"username"`
	DeviceID string `json:"device_id,omitempty"`
}

// HandleTempLogin claims a device-bound temporary identity. Re-claiming the
// same name from the same device returns the existing identity.
func HandleTempLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input TempLoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ident, loginErr := deps.Identities.CreateTemporary(r.Context(), input.Username, input.DeviceID)
		if loginErr != nil {
			resp.RespondError(w, r, loginErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"identity": identityPayload(ident),
		})
	}
}

type PermanentLoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// HandlePermanentLogin logs into an existing permanent account or registers a
// new one when the username is free. Wrong passwords are rejected, never
// treated as a new registration.
func HandlePermanentLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input PermanentLoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ident, loginErr := deps.Identities.LoginOrCreatePermanent(r.Context(), input.Username, input.Password, input.Email)
		if loginErr != nil {
			resp.RespondError(w, r, loginErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"identity": identityPayload(ident),
		})
	}
}

type ConvertInput struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleConvertToPermanent upgrades a temporary identity in place.
func HandleConvertToPermanent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ConvertInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ident, convErr := deps.Identities.ConvertToPermanent(r.Context(), input.UserID, input.Email, input.Password)
		if convErr != nil {
			resp.RespondError(w, r, convErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"identity": identityPayload(ident),
		})
	}
}

type LogoutInput struct {
	Token string `json:"token"`
}

// HandleLogout resolves the access token and deletes the identity when it is
// temporary. Permanent identities survive; the client just drops the token.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LogoutInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ident, deleted, logoutErr := deps.Identities.Logout(r.Context(), input.Token)
		if logoutErr != nil {
			resp.RespondError(w, r, logoutErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"username": ident.Username,
			"deleted":  deleted,
		})
	}
}
