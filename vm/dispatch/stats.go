package dispatch

// Statistics mirror what the chain already tracks per site: hits, misses,
// installs, and suffix rebuilds. Aggregation exists for profiling; none of
// it sits on the dispatch hot path beyond the per-site atomic counters.

// SiteStats is a point-in-time view of one call site.
type SiteStats struct {
	Owner    string
	Selector string
	Ordinal  int
	State    State
	Depth    int
	Hits     uint64
	Misses   uint64
	Installs uint64
	Rebuilds uint64
}

// Stats samples the site's counters.
func (s *CallSite) Stats() SiteStats {
	return SiteStats{
		Owner:    s.Owner,
		Selector: s.Selector,
		Ordinal:  s.Ordinal,
		State:    s.State(),
		Depth:    s.Depth(),
		Hits:     s.hits.Load(),
		Misses:   s.misses.Load(),
		Installs: s.installs.Load(),
		Rebuilds: s.rebuilds.Load(),
	}
}

// HitRate returns the site's cache hit rate as a percentage.
func (s *CallSite) HitRate() float64 {
	hits := s.hits.Load()
	total := hits + s.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) * 100 / float64(total)
}

// EngineStats aggregates every call site of an engine.
type EngineStats struct {
	Sites       int
	Empty       int
	Monomorphic int
	Polymorphic int
	Megamorphic int

	Hits     uint64
	Misses   uint64
	Installs uint64
	Rebuilds uint64

	HitRate         float64
	MonomorphicRate float64
}

// Stats collects aggregate statistics across all sites.
func (en *Engine) Stats() EngineStats {
	var agg EngineStats
	for _, site := range en.Sites() {
		st := site.Stats()
		agg.Sites++
		switch st.State {
		case StateEmpty:
			agg.Empty++
		case StateMonomorphic:
			agg.Monomorphic++
		case StatePolymorphic:
			agg.Polymorphic++
		case StateMegamorphic:
			agg.Megamorphic++
		}
		agg.Hits += st.Hits
		agg.Misses += st.Misses
		agg.Installs += st.Installs
		agg.Rebuilds += st.Rebuilds
	}

	if total := agg.Hits + agg.Misses; total > 0 {
		agg.HitRate = float64(agg.Hits) * 100 / float64(total)
	}
	if active := agg.Sites - agg.Empty; active > 0 {
		agg.MonomorphicRate = float64(agg.Monomorphic) * 100 / float64(active)
	}
	return agg
}
