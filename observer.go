package cgmres

// Sample is the diagnostic record produced by one update() call, handed to
// every registered Observer. An Observer only watches; it never mutates
// the Solver, mirroring the facade's read-only synchronize() boundary —
// the core itself never does I/O.
type Sample struct {
	Time         float64
	ResidualNorm float64
	GMRESIters   int
	Breakdown    bool
	Poisoned     bool
}

// Observer watches one update() sample. Implementations must not mutate
// the Solver; they exist purely to let an external collaborator (a CLI
// driver, a test, a CSV writer) see per-sample diagnostics without the
// core performing I/O itself.
type Observer interface {
	Observe(Sample)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Sample)

// Observe calls f(s).
func (f ObserverFunc) Observe(s Sample) { f(s) }

// LoggingObserver returns an Observer that writes a one-line summary to l
// for every sample, gated on l's owner calling Flush. This is the
// verbose_level==1 behavior.
func LoggingObserver(l *Logger) Observer {
	return ObserverFunc(func(s Sample) {
		if s.Poisoned {
			l.Logf("t=%-10.4f STATUS=poisoned\n", s.Time)
			return
		}
		status := "ok"
		if s.Breakdown {
			status = "gmres-breakdown"
		}
		l.Logf("t=%-10.4f |F|=%-12.6e iters=%-3d status=%s\n", s.Time, s.ResidualNorm, s.GMRESIters, status)
	})
}
