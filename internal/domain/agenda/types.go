package agenda

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

// Status values for appointment reservations. "expired" is the manual no-show
// marking, not a time-based transition.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusAttended  Status = "attended"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusAttended, StatusExpired, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusAttended, StatusExpired, StatusCancelled:
		return true
	default:
		return false
	}
}

type Source string

const (
	SourceWeb   Source = "web"
	SourceAdmin Source = "admin"
)

var codePattern = regexp.MustCompile(`^RSV-[0-9]{6}$`)

// GenerateCode produces an appointment code of the form RSV-999999. The
// caller checks it against the unique constraint and retries on collision.
func GenerateCode() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		panic("agenda: crypto/rand unavailable: " + err.Error())
	}
	digits := make([]byte, 6)
	for i, b := range buf {
		digits[i] = '0' + b%10
	}
	return fmt.Sprintf("RSV-%s", digits)
}

func IsCode(value string) bool {
	return codePattern.MatchString(value)
}
