package ops

import (
	"crypto/rand"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/wxdash/internal/district"
	"github.com/hpungsan/wxdash/internal/observability"
	"github.com/hpungsan/wxdash/internal/weather"
)

// History limits
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// Env carries the dependencies shared by every operation.
type Env struct {
	DB        *sql.DB
	Directory *district.Directory
	Provider  weather.Provider
	Clock     clockwork.Clock
	Metrics   *observability.Metrics // optional
	Logger    *slog.Logger

	// HistoryLimit is the default number of entries History returns.
	HistoryLimit int
}

func (e *Env) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return observability.Discard()
	}
	return e.Logger
}

// entropy is shared so ids minted within one millisecond stay ordered.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// generateULID generates a new ULID for t.
func generateULID(t time.Time) (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
