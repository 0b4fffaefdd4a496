package payloads

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMarkerShape(t *testing.T) {
	marker := NewMarker()
	s := marker.String()

	assert.True(t, strings.HasPrefix(s, MarkerPrefix))
	assert.True(t, strings.HasSuffix(s, MarkerSuffix))
	assert.Len(t, s, len(MarkerPrefix)+markerBodyLength+len(MarkerSuffix))
	assert.True(t, MarkerPattern.MatchString(s))
	// nothing in the marker needs escaping inside html or a query string
	assert.NotContainsf(t, s, "<", "marker %s", s)
	assert.NotContains(t, s, "\"")
	assert.NotContains(t, s, "&")
}

func TestNewMarkerUniqueUnderConcurrency(t *testing.T) {
	const workers = 8
	const perWorker = 500

	var mu sync.Mutex
	seen := make(map[Marker]bool, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]Marker, 0, perWorker)
			for j := 0; j < perWorker; j++ {
				local = append(local, NewMarker())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, m := range local {
				seen[m] = true
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}
