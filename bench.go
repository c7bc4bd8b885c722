package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// benchmarkResult is the timing record of one backend over reruns of the
// same series.
type benchmarkResult struct {
	method  string
	size    int
	steps   int
	seconds []float64
}

// median of the rerun times. The middle pair is averaged for even counts.
func (r benchmarkResult) median() float64 {
	times := append([]float64(nil), r.seconds...)
	sort.Float64s(times)
	n := len(times)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return times[n/2]
	}
	return (times[n/2-1] + times[n/2]) / 2
}

// runBenchmark times every requested backend over the series, reconstructing
// the solver for each rerun so no run inherits warm state. Backends whose
// setup fails (typically the GPU ones without a device) are skipped with a
// warning instead of aborting the sweep.
func runBenchmark(methods []string, materials []material, elements []wallElement, series []boundaryStep, opts solverOptions, reruns int) []benchmarkResult {
	var results []benchmarkResult
	for _, method := range methods {
		result := benchmarkResult{method: method, size: len(elements), steps: len(series)}
		for rerun := 0; rerun < reruns; rerun++ {
			solver, err := newHeatSolver(method, materials, elements, opts)
			if err != nil {
				log.WithError(err).WithField("method", method).Warn("skipping backend")
				result.seconds = nil
				break
			}
			started := time.Now()
			err = newSimulationRun(solver, series, len(elements), false, nil).run()
			elapsed := time.Since(started).Seconds()
			solver.close()
			if err != nil {
				log.WithError(err).WithField("method", method).Warn("skipping backend")
				result.seconds = nil
				break
			}
			result.seconds = append(result.seconds, elapsed)
		}
		if len(result.seconds) == 0 {
			continue
		}
		log.WithFields(log.Fields{
			"method": method,
			"size":   result.size,
			"median": fmt.Sprintf("%.6fs", result.median()),
			"reruns": len(result.seconds),
		}).Info("benchmark finished")
		results = append(results, result)
	}
	return results
}

// writeBenchmarkResults stores one file per backend under
// benchmark/<label>/<method>/<size>.txt: a small header followed by one
// rerun time per line.
func writeBenchmarkResults(label string, results []benchmarkResult) error {
	for _, result := range results {
		dir := filepath.Join("benchmark", label, result.method)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("%d.txt", result.size))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		fmt.Fprintf(f, "Size: %d\n", result.size)
		fmt.Fprintf(f, "Steps: %d\n", result.steps)
		fmt.Fprintf(f, "Reruns: %d\n", len(result.seconds))
		for _, t := range result.seconds {
			fmt.Fprintf(f, "%v\n", t)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.WithField("path", path).Info("benchmark results written")
	}
	return nil
}
