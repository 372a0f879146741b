package web

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/htarver/tidesat/internal/tides"
)

var errSeriesNotFound = errors.New("tide series not found")

// seriesStore holds uploaded tide series in memory keyed by id. Uploads
// live for the server's lifetime, a restart forgets them.
type seriesStore struct {
	mu     sync.RWMutex
	series map[string]tides.Series
}

func newSeriesStore() *seriesStore {
	return &seriesStore{series: make(map[string]tides.Series)}
}

// Put stores a series under a fresh id
func (st *seriesStore) Put(s tides.Series) string {
	id := uuid.NewString()
	st.mu.Lock()
	st.series[id] = s
	st.mu.Unlock()
	return id
}

// Get looks a series up by id
func (st *seriesStore) Get(id string) (tides.Series, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.series[id]
	if !ok {
		return nil, errSeriesNotFound
	}
	return s, nil
}
