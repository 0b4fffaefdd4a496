package payloads

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	MarkerPrefix     = "__htin_"
	MarkerSuffix     = "__"
	markerBodyLength = 10
)

// MarkerPattern matches any marker produced by NewMarker
var MarkerPattern = regexp.MustCompile(regexp.QuoteMeta(MarkerPrefix) + `[0-9a-f]{10}` + regexp.QuoteMeta(MarkerSuffix))

// Marker is a per-attempt token used to correlate an injected payload with its reflection
type Marker string

func (m Marker) String() string {
	return string(m)
}

// NewMarker returns a fresh marker. The body comes from the random part of a v4 uuid, the version
// nibble sits after the first 12 hex characters so all 10 used here are random.
func NewMarker() Marker {
	body := strings.ReplaceAll(uuid.NewString(), "-", "")[:markerBodyLength]
	return Marker(MarkerPrefix + body + MarkerSuffix)
}
