package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateReferenceNo returns prefix followed by eight upper-case hex digits,
// e.g. ORD-1A2B3C4D. It is for humans; uniqueness comes from the table's
// unique index.
func GenerateReferenceNo(prefix string) string {
	id := uuid.New()
	return prefix + "-" + strings.ToUpper(hexPrefix(id))
}

func hexPrefix(id uuid.UUID) string {
	return strings.SplitN(id.String(), "-", 2)[0]
}
