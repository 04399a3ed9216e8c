package camping

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"time"

	"arequita-backend/internal/pkg/errs"
)

var ErrInvalidStayWindow = errs.New("la fecha de salida debe ser posterior a la de ingreso")

// StayWindow is the [check-in, check-out) date range of a stay. Both ends are
// calendar dates; check-out must be strictly after check-in.
type StayWindow struct {
	checkIn  time.Time
	checkOut time.Time
}

func NewStayWindow(checkIn, checkOut time.Time) (StayWindow, error) {
	in := truncateToDate(checkIn)
	out := truncateToDate(checkOut)
	if !in.Before(out) {
		return StayWindow{}, ErrInvalidStayWindow
	}
	return StayWindow{checkIn: in, checkOut: out}, nil
}

// ReconstructStayWindow rebuilds a window from persisted dates without
// revalidating the range.
func ReconstructStayWindow(checkIn, checkOut time.Time) StayWindow {
	return StayWindow{checkIn: truncateToDate(checkIn), checkOut: truncateToDate(checkOut)}
}

func (w StayWindow) CheckIn() time.Time {
	return w.checkIn
}

func (w StayWindow) CheckOut() time.Time {
	return w.checkOut
}

func (w StayWindow) Nights() int {
	return int(w.checkOut.Sub(w.checkIn).Hours() / 24)
}

// FinishedBy reports whether the stay is over as of the given date.
func (w StayWindow) FinishedBy(today time.Time) bool {
	return w.checkOut.Before(truncateToDate(today))
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeDigits  = "0123456789"
)

var codePattern = regexp.MustCompile(`^ARQ-[A-Z]{3}-[0-9]{4}$`)

// GenerateCode produces a human-typeable pre-reservation code of the form
// ARQ-XXX-9999. Uniqueness is enforced by the caller against the persisted
// unique constraint, retrying on collision.
func GenerateCode() string {
	return fmt.Sprintf("ARQ-%s-%s", randomFrom(codeLetters, 3), randomFrom(codeDigits, 4))
}

func IsCode(value string) bool {
	return codePattern.MatchString(value)
}

func randomFrom(alphabet string, n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("camping: crypto/rand unavailable: " + err.Error())
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out)
}
