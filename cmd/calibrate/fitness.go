package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/feralcats/config"
	"github.com/pthm-cable/feralcats/sim"
	"github.com/pthm-cable/feralcats/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative coexistence ticks averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			summary, ok := fe.runSimulation(x, s)
			if !ok {
				results[idx] = seedResult{}
				return
			}
			results[idx] = seedResult{
				fitness: computeFitness(summary),
				quality: computeQuality(summary),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation runs one seed until a species dies out or maxTicks.
// ok is false if the configuration was rejected.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (telemetry.Summary, bool) {
	cfg := fe.baseConfig.Clone().WithSeed(seed)
	fe.params.ApplyToConfig(cfg, x)

	s, err := sim.New(cfg)
	if err != nil {
		return telemetry.Summary{}, false
	}

	for s.IsRunning() && s.Tick() < fe.maxTicks {
		s.Step()
		if s.LatestMetrics().LiveCats == 0 {
			break
		}
	}
	return telemetry.Summarize(s.Metrics()), true
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(coexistenceTicks × (1.0 + 0.2 × quality))
func computeFitness(s telemetry.Summary) float64 {
	return -(float64(s.CoexistenceTicks) * (1.0 + 0.2*computeQuality(s)))
}

// computeQuality scores population stability ∈ [0, 1]: low prey variation
// and a prey:cat ratio near 5 both score high.
func computeQuality(s telemetry.Summary) float64 {
	if s.MeanPrey <= 0 || s.MeanCats <= 0 {
		return 0
	}
	cvPrey := s.StdPrey / s.MeanPrey
	stability := math.Exp(-cvPrey * cvPrey)

	logErr := math.Log(s.MeanPrey / s.MeanCats / 5.0)
	ratio := math.Exp(-logErr * logErr)

	return clamp01(0.5*stability + 0.5*ratio)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
