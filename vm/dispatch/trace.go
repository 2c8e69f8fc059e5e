package dispatch

import (
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("verdin.dispatch")

func (en *Engine) traceInstall(s *CallSite, e *entry) {
	if !en.cfg.Trace {
		return
	}
	log.Debugf("%s[%d] #%s: install %s, depth %d", s.Owner, s.Ordinal, s.Selector, e, s.Depth())
}

func (en *Engine) traceRebuild(s *CallSite, stale *entry) {
	if !en.cfg.Trace {
		return
	}
	log.Debugf("%s[%d] #%s: rebuilt suffix, dropped stale %s", s.Owner, s.Ordinal, s.Selector, stale)
}

func (en *Engine) traceMegamorphic(s *CallSite) {
	if !en.cfg.Trace {
		return
	}
	log.Infof("%s[%d] #%s: megamorphic after %d installs", s.Owner, s.Ordinal, s.Selector, s.installs.Load())
}
