package idempotency

import (
	"net/http"
	"strings"
)

const Header = "Idempotency-Key"

// MaxLen bounds stored keys; longer keys are rejected by callers.
const MaxLen = 128

func Key(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}
