package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPreyCrash       BookmarkType = "prey_crash"
	BookmarkCatsExtinct     BookmarkType = "cats_extinct"
	BookmarkPreyExtinct     BookmarkType = "prey_extinct"
	BookmarkCatRecovery     BookmarkType = "cat_recovery"
	BookmarkStableEcosystem BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int          `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkConfig tunes detection thresholds.
type BookmarkConfig struct {
	HistorySize   int
	PreyCrashDrop float64 // fraction below recent peak
	PreyCrashMin  int     // minimum absolute drop
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg BookmarkConfig

	// Rolling history (circular buffer)
	history     []TickSnapshot
	historyIdx  int
	historyFull bool

	// State tracking
	recentCatMin     int  // minimum cat count since last recovery
	recentPreyPeak   int  // peak prey count since last crash
	catsExtinct      bool // fires once
	preyExtinct      bool // fires once
	stableTicksCount int  // consecutive ticks with a stable window
	stableFired      bool
}

// NewBookmarkDetector creates a detector.
func NewBookmarkDetector(cfg BookmarkConfig) *BookmarkDetector {
	if cfg.HistorySize < 5 {
		cfg.HistorySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		cfg:          cfg,
		history:      make([]TickSnapshot, cfg.HistorySize),
		recentCatMin: -1,
	}
}

// Check analyzes the latest snapshot and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(s TickSnapshot) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkExtinctions(s); b != nil {
		bookmarks = append(bookmarks, b...)
	}
	if b := bd.checkPreyCrash(s); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCatRecovery(s); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(s)

	if b := bd.checkStableEcosystem(s); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if s.LiveCats < bd.recentCatMin || bd.recentCatMin < 0 {
		bd.recentCatMin = s.LiveCats
	}
	if s.LivePrey > bd.recentPreyPeak {
		bd.recentPreyPeak = s.LivePrey
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(s TickSnapshot) {
	bd.history[bd.historyIdx] = s
	bd.historyIdx = (bd.historyIdx + 1) % len(bd.history)
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []TickSnapshot {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkExtinctions(s TickSnapshot) []Bookmark {
	var out []Bookmark
	if s.LiveCats == 0 && !bd.catsExtinct {
		bd.catsExtinct = true
		out = append(out, Bookmark{
			Type:        BookmarkCatsExtinct,
			Tick:        s.Tick,
			Description: fmt.Sprintf("Last cat gone with %d prey alive", s.LivePrey),
		})
	}
	if s.LivePrey == 0 && !bd.preyExtinct {
		bd.preyExtinct = true
		out = append(out, Bookmark{
			Type:        BookmarkPreyExtinct,
			Tick:        s.Tick,
			Description: fmt.Sprintf("Last prey gone after %d captures", s.PredationTotal),
		})
	}
	return out
}

func (bd *BookmarkDetector) checkPreyCrash(s TickSnapshot) *Bookmark {
	if bd.recentPreyPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(s.LivePrey)/float64(bd.recentPreyPeak)
	if drop > bd.cfg.PreyCrashDrop && bd.recentPreyPeak-s.LivePrey >= bd.cfg.PreyCrashMin {
		// Reset peak after crash
		oldPeak := bd.recentPreyPeak
		bd.recentPreyPeak = s.LivePrey

		return &Bookmark{
			Type:        BookmarkPreyCrash,
			Tick:        s.Tick,
			Description: fmt.Sprintf("Prey crashed %.0f%% from peak %d to %d", drop*100, oldPeak, s.LivePrey),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkCatRecovery(s TickSnapshot) *Bookmark {
	if bd.recentCatMin <= 0 || bd.recentCatMin > 1 {
		return nil
	}

	if s.LiveCats >= 3*bd.recentCatMin && s.LiveCats >= 3 {
		// Reset the minimum after triggering
		oldMin := bd.recentCatMin
		bd.recentCatMin = s.LiveCats

		return &Bookmark{
			Type:        BookmarkCatRecovery,
			Tick:        s.Tick,
			Description: fmt.Sprintf("Cat population recovered from %d to %d", oldMin, s.LiveCats),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(s TickSnapshot) *Bookmark {
	if bd.stableFired {
		return nil
	}
	// Need both populations present
	if s.LivePrey < 10 || s.LiveCats < 2 {
		bd.stableTicksCount = 0
		return nil
	}

	history := bd.getHistory()
	if !bd.historyFull {
		return nil
	}

	var preySum, catSum float64
	for _, h := range history {
		preySum += float64(h.LivePrey)
		catSum += float64(h.LiveCats)
	}
	n := float64(len(history))
	preyMean := preySum / n
	catMean := catSum / n

	var preyVar, catVar float64
	for _, h := range history {
		preyDiff := float64(h.LivePrey) - preyMean
		catDiff := float64(h.LiveCats) - catMean
		preyVar += preyDiff * preyDiff
		catVar += catDiff * catDiff
	}
	preyVar /= n
	catVar /= n

	// CV^2 < 0.04 means CV < 0.2
	preyCV2 := preyVar / (preyMean * preyMean)
	catCV2 := catVar / (catMean * catMean)

	if preyCV2 < 0.04 && catCV2 < 0.04 {
		bd.stableTicksCount++
	} else {
		bd.stableTicksCount = 0
	}

	if bd.stableTicksCount == len(history) {
		bd.stableFired = true
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        s.Tick,
			Description: fmt.Sprintf("Stable ecosystem with %d prey, %d cats held for %d ticks", s.LivePrey, s.LiveCats, len(history)),
		}
	}

	return nil
}
