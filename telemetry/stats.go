package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Summary condenses a run's snapshots.
type Summary struct {
	Ticks            int     `csv:"ticks"`
	FinalCats        int     `csv:"final_cats"`
	FinalPrey        int     `csv:"final_prey"`
	PeakCats         int     `csv:"peak_cats"`
	PeakPrey         int     `csv:"peak_prey"`
	MeanCats         float64 `csv:"mean_cats"`
	StdCats          float64 `csv:"std_cats"`
	MeanPrey         float64 `csv:"mean_prey"`
	StdPrey          float64 `csv:"std_prey"`
	PreyP10          float64 `csv:"prey_p10"`
	PreyP50          float64 `csv:"prey_p50"`
	PreyP90          float64 `csv:"prey_p90"`
	PredationTotal   int     `csv:"predation_total"`
	PredationPerTick float64 `csv:"predation_per_tick"`
	CoexistenceTicks int     `csv:"coexistence_ticks"` // ticks after 0 with both species alive
	CatsExtinctTick  int     `csv:"cats_extinct_tick"` // -1 if cats survived
	PreyExtinctTick  int     `csv:"prey_extinct_tick"` // -1 if prey survived
}

// Summarize computes a Summary. snaps must be in tick order starting at 0.
func Summarize(snaps []TickSnapshot) Summary {
	s := Summary{CatsExtinctTick: -1, PreyExtinctTick: -1}
	if len(snaps) == 0 {
		return s
	}

	cats := make([]float64, len(snaps))
	prey := make([]float64, len(snaps))
	for i, snap := range snaps {
		cats[i] = float64(snap.LiveCats)
		prey[i] = float64(snap.LivePrey)

		s.PeakCats = max(s.PeakCats, snap.LiveCats)
		s.PeakPrey = max(s.PeakPrey, snap.LivePrey)

		if snap.Tick > 0 && snap.LiveCats > 0 && snap.LivePrey > 0 {
			s.CoexistenceTicks++
		}
		if snap.LiveCats == 0 && s.CatsExtinctTick < 0 {
			s.CatsExtinctTick = snap.Tick
		}
		if snap.LivePrey == 0 && s.PreyExtinctTick < 0 {
			s.PreyExtinctTick = snap.Tick
		}
	}

	last := snaps[len(snaps)-1]
	s.Ticks = last.Tick
	s.FinalCats = last.LiveCats
	s.FinalPrey = last.LivePrey
	s.PredationTotal = last.PredationTotal
	if s.Ticks > 0 {
		s.PredationPerTick = float64(s.PredationTotal) / float64(s.Ticks)
	}

	s.MeanCats, s.StdCats = stat.PopMeanStdDev(cats, nil)
	s.MeanPrey, s.StdPrey = stat.PopMeanStdDev(prey, nil)

	slices.Sort(prey)
	s.PreyP10 = stat.Quantile(0.10, stat.Empirical, prey, nil)
	s.PreyP50 = stat.Quantile(0.50, stat.Empirical, prey, nil)
	s.PreyP90 = stat.Quantile(0.90, stat.Empirical, prey, nil)

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("ticks", s.Ticks),
		slog.Int("final_cats", s.FinalCats),
		slog.Int("final_prey", s.FinalPrey),
		slog.Int("peak_cats", s.PeakCats),
		slog.Int("peak_prey", s.PeakPrey),
		slog.Float64("mean_cats", s.MeanCats),
		slog.Float64("mean_prey", s.MeanPrey),
		slog.Float64("prey_p50", s.PreyP50),
		slog.Int("predation_total", s.PredationTotal),
		slog.Int("coexistence_ticks", s.CoexistenceTicks),
		slog.Int("cats_extinct_tick", s.CatsExtinctTick),
		slog.Int("prey_extinct_tick", s.PreyExtinctTick),
	)
}
