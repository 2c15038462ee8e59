/*
Package errs provides the application's error type and error-code catalog.

This file maps every error code to its CustomError template, standardizing the
client message and HTTP status per code. Codes without an explicit Status
default to 400 Bad Request.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Missing or invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrFormParseFailed:       {Code: ErrFormParseFailed, Message: "Failed to process uploaded data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large."},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room, Message, and File Errors
	ErrRoomNameTaken:       {Code: ErrRoomNameTaken, Message: "A room with this name already exists.", Status: http.StatusConflict},
	ErrRoomNotFound:        {Code: ErrRoomNotFound, Message: "Room not found.", Status: http.StatusNotFound},
	ErrRoomPasswordInvalid: {Code: ErrRoomPasswordInvalid, Message: "Incorrect password.", Status: http.StatusUnauthorized},
	ErrSessionNotFound:     {Code: ErrSessionNotFound, Message: "User session not found.", Status: http.StatusNotFound},
	ErrFileMissing:         {Code: ErrFileMissing, Message: "No file provided."},

	// 3xxx: Identity and Auth Errors
	ErrUsernameTaken:      {Code: ErrUsernameTaken, Message: "Username already exists (permanent account)."},
	ErrDeviceConflict:     {Code: ErrDeviceConflict, Message: "Username already exists on another device."},
	ErrEmailTaken:         {Code: ErrEmailTaken, Message: "Email already exists."},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect username or password.", Status: http.StatusUnauthorized},
	ErrIdentityNotFound:   {Code: ErrIdentityNotFound, Message: "Account not found."},
	ErrAlreadyPermanent:   {Code: ErrAlreadyPermanent, Message: "Account is already permanent."},
	ErrTokenInvalid:       {Code: ErrTokenInvalid, Message: "Invalid access token.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrPersistenceFailed: {Code: ErrPersistenceFailed, Message: "Operation failed. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusInternalServerError},
}
