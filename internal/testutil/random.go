package testutil

import (
	"strings"

	"github.com/google/uuid"
)

// RandomUsername returns a unique username suitable for registration tests.
// Usernames must stay within the 3-30 character limit, so only a short
// uuid fragment is appended.
func RandomUsername(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return prefix + "_" + suffix
}
