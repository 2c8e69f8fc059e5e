package dispatch

import "github.com/hollis/verdin/manifest"

// ConfigFrom derives an engine configuration from a loaded manifest. A
// nil manifest yields the defaults.
func ConfigFrom(m *manifest.Manifest) Config {
	if m == nil {
		return Config{}.withDefaults()
	}
	return Config{
		MaxDepth: m.Dispatch.MaxDepth,
		Trace:    m.Dispatch.Trace,
	}.withDefaults()
}
