/*
Package randx generates the collision-resistant identifiers the server hands out.

Room ids are fixed-length Base62 strings drawn from crypto/rand; session,
message, and file identifiers are standard UUID v4 strings.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the size of the Base62 character set.
	Base62Len = int64(len(Base62Chars))

	// RoomIDLength is the fixed length of generated room ids.
	RoomIDLength = 12

	// maxExtLength caps the extension carried over from an uploaded file name.
	maxExtLength = 10
)

// RoomID generates a Base62 room id using crypto/rand.
func RoomID() (string, error) {
	result := make([]byte, RoomIDLength)

	for i := range RoomIDLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for room id: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// SessionID generates a UUID v4 string used as an opaque presence handle.
func SessionID() string {
	return uuid.New().String()
}

// MessageID generates a UUID v4 string used as a unique message identifier.
func MessageID() string {
	return uuid.New().String()
}

// AccessToken generates a UUID v4 string used as an opaque identity token.
func AccessToken() string {
	return uuid.New().String()
}

// StoredFilename generates a storage name for an uploaded file that is
// independent of the client-supplied name. Only a short, sanitized extension
// survives from the original, which rules out overwrites and path traversal.
func StoredFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))

	valid := len(ext) > 1 && len(ext) <= maxExtLength
	if valid {
		for _, char := range ext[1:] {
			if !strings.ContainsRune(Base62Chars, char) {
				valid = false
				break
			}
		}
	}
	if !valid {
		ext = ""
	}

	return uuid.New().String() + ext
}
