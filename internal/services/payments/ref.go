package payments

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const refPrefix = "BIDA"

// GenerateRef builds a gateway transaction ref. The user fragment keeps
// refs greppable in gateway dashboards; the millisecond timestamp plus a
// random tail keeps rapid retries from colliding.
func GenerateRef(userID string, now time.Time) string {
	return refPrefix + "-" +
		refUserFragment(userID) + "-" +
		strconv.FormatInt(now.UnixMilli(), 10) + "-" +
		refNonce()
}

func refUserFragment(userID string) string {
	var b strings.Builder
	for _, r := range userID {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
		if b.Len() >= 8 {
			break
		}
	}
	if b.Len() == 0 {
		return "ANON"
	}
	return b.String()
}

func refNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
