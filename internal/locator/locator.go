// Package locator turns spoken place names into coordinates. Resolution is
// layered: an in-process map for the session, a gorm-backed table across
// sessions, and a geocoding service as the source of truth. Concurrent
// lookups for the same normalized query are deduplicated into one request.
package locator

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skyward/flightcore/internal/util"
)

// ErrNotFound means the geocoder had no match for the query.
var ErrNotFound = errors.New("locator: no match for query")

// Fix is a resolved place.
type Fix struct {
	Query       string
	DisplayName string
	Lat         float64 // deg
	Lon         float64 // deg
}

// Geocoder is the lookup capability. Implemented by Client.
type Geocoder interface {
	Search(ctx context.Context, query string) (Fix, []byte, error)
}

type outcome struct {
	fix Fix
	err error
}

// Locator resolves and caches place names. db may be nil; persistence is
// then skipped and only the in-process cache applies.
type Locator struct {
	geocoder Geocoder
	db       *gorm.DB
	log      zerolog.Logger

	mu      sync.Mutex
	memory  map[string]Fix
	pending map[string][]chan outcome
}

// New creates a Locator over the given geocoder and optional cache DB.
func New(geocoder Geocoder, db *gorm.DB, log zerolog.Logger) *Locator {
	return &Locator{
		geocoder: geocoder,
		db:       db,
		log:      log,
		memory:   make(map[string]Fix),
		pending:  make(map[string][]chan outcome),
	}
}

// Resolve returns the coordinates for a spoken place name. Queries that
// normalize to the same key share one lookup; a second caller blocks on
// the first caller's result rather than issuing its own request. Failures
// are returned but never cached.
func (l *Locator) Resolve(ctx context.Context, query string) (Fix, error) {
	key := util.NormalizeKey(query)
	if key == "" {
		return Fix{}, ErrNotFound
	}

	l.mu.Lock()
	if fix, ok := l.memory[key]; ok {
		l.mu.Unlock()
		return fix, nil
	}
	if waiters, inFlight := l.pending[key]; inFlight {
		ch := make(chan outcome, 1)
		l.pending[key] = append(waiters, ch)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return Fix{}, ctx.Err()
		case o := <-ch:
			return o.fix, o.err
		}
	}
	l.pending[key] = []chan outcome{}
	l.mu.Unlock()

	fix, err := l.lookup(ctx, key, query)

	l.mu.Lock()
	if err == nil {
		l.memory[key] = fix
	}
	waiters := l.pending[key]
	delete(l.pending, key)
	l.mu.Unlock()

	for _, ch := range waiters {
		ch <- outcome{fix: fix, err: err}
	}
	return fix, err
}

func (l *Locator) lookup(ctx context.Context, key, query string) (Fix, error) {
	if l.db != nil {
		var place Place
		err := l.db.WithContext(ctx).Where("key = ?", key).First(&place).Error
		switch {
		case err == nil:
			return Fix{
				Query:       place.Query,
				DisplayName: place.DisplayName,
				Lat:         place.Lat,
				Lon:         place.Lon,
			}, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			// Cache trouble is not fatal; fall through to the geocoder.
			l.log.Warn().Err(err).Str("key", key).Msg("place cache read failed")
		}
	}

	fix, raw, err := l.geocoder.Search(ctx, query)
	if err != nil {
		return Fix{}, err
	}

	if l.db != nil {
		place := Place{
			Key:         key,
			Query:       query,
			DisplayName: fix.DisplayName,
			Lat:         fix.Lat,
			Lon:         fix.Lon,
			Raw:         datatypes.JSON(raw),
		}
		if err := l.db.WithContext(ctx).Create(&place).Error; err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("place cache write failed")
		}
	}

	l.log.Debug().Str("query", query).Str("resolved", fix.DisplayName).Msg("place resolved")
	return fix, nil
}
