/*
Package errs provides the application's error type and error-code catalog.

The codes identify specific validation, not-found, conflict, auth, and internal
failures both inside the server and toward clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate exceeded the configured limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Room, Message, and File Errors
const (
	// ErrRoomNameTaken indicates that a room with the requested name already exists.
	ErrRoomNameTaken = 2101

	// ErrRoomNotFound indicates that the referenced room does not exist.
	ErrRoomNotFound = 2102

	// ErrRoomPasswordInvalid indicates that the supplied room password did not match.
	ErrRoomPasswordInvalid = 2103

	// ErrSessionNotFound indicates that the referenced presence session does not exist.
	ErrSessionNotFound = 2201

	// ErrFileMissing indicates that an upload request carried no file part.
	ErrFileMissing = 2301
)

// 3xxx: Identity and Auth Errors
const (
	// ErrUsernameTaken indicates that the username belongs to an existing permanent account.
	ErrUsernameTaken = 3101

	// ErrDeviceConflict indicates that a temporary username is claimed by another device.
	ErrDeviceConflict = 3102

	// ErrEmailTaken indicates that the email is already associated with another account.
	ErrEmailTaken = 3103

	// ErrInvalidCredentials indicates a password mismatch for an existing permanent account.
	ErrInvalidCredentials = 3104

	// ErrIdentityNotFound indicates that the referenced identity does not exist.
	ErrIdentityNotFound = 3105

	// ErrAlreadyPermanent indicates a conversion attempt on a non-temporary identity.
	ErrAlreadyPermanent = 3106

	// ErrTokenInvalid indicates that the supplied access token is unknown.
	ErrTokenInvalid = 3107
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000

	// ErrPersistenceFailed indicates a failure writing durable state.
	ErrPersistenceFailed = 5001

	// ErrFileStorageFailed indicates a failure writing uploaded bytes to blob storage.
	ErrFileStorageFailed = 5002
)
