package probe

import "strings"

// Detector decides whether a probed response is a bot-challenge page
// rather than real content. Pluggable so markers can be extended and
// tested independently of the transport.
type Detector interface {
	Detect(statusCode int, body []byte) bool
}

// MarkerDetector flags responses whose body contains any known
// challenge marker, case-insensitively.
type MarkerDetector struct {
	markers []string
}

// DefaultMarkers covers the Cloudflare interstitial banners and the
// generic human-verification prompts seen in practice.
func DefaultMarkers() []string {
	return []string{
		"just a moment",
		"attention required! | cloudflare",
		"checking your browser",
		"cf-browser-verification",
		"challenge-platform",
		"verify you are human",
		"enable javascript and cookies to continue",
	}
}

// NewMarkerDetector creates a detector for the given markers; with no
// arguments it uses DefaultMarkers.
func NewMarkerDetector(markers ...string) *MarkerDetector {
	if len(markers) == 0 {
		markers = DefaultMarkers()
	}
	lowered := make([]string, len(markers))
	for i, m := range markers {
		lowered[i] = strings.ToLower(m)
	}
	return &MarkerDetector{markers: lowered}
}

func (d *MarkerDetector) Detect(_ int, body []byte) bool {
	if len(body) == 0 {
		return false
	}
	haystack := strings.ToLower(string(body))
	for _, m := range d.markers {
		if strings.Contains(haystack, m) {
			return true
		}
	}
	return false
}
