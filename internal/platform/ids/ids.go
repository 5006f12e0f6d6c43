package ids

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Entity ids are ULID strings. Every read/write goes through Normalize so
// the store only ever sees the one canonical form (upper-case, trimmed).

type Gen interface {
	New() (string, error)
}

type ULIDGen struct{}

func (ULIDGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func Valid(id string) bool {
	_, err := ulid.ParseStrict(Normalize(id))
	return err == nil
}
