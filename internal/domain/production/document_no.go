package production

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	issueNoPrefix  = "MI"
	returnNoPrefix = "MR"
)

// NewIssueNo generates an issuance number like MI-20250114-3F9A1C
func NewIssueNo(now time.Time) string {
	return documentNo(issueNoPrefix, now)
}

// NewReturnNo generates a return number like MR-20250114-3F9A1C
func NewReturnNo(now time.Time) string {
	return documentNo(returnNoPrefix, now)
}

func documentNo(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}
