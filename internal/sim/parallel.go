package sim

import (
	"context"
	"sync"

	"github.com/san-kum/physlab/internal/demo"
)

// Job is one headless run of a demo. Every job builds its own world.
type Job struct {
	Demo    string
	Options demo.Options
	Config  Config
}

// RunAll runs jobs concurrently and returns their results in job order.
// The first error, in job order, is returned.
func RunAll(ctx context.Context, jobs []Job, opts ...Option) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, job Job) {
			defer wg.Done()

			sc, err := demo.Build(job.Demo, job.Options)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = New(sc, opts...).Run(ctx, job.Config)
		}(i, job)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Regimes builds one job per contact regime for the same demo and config.
func Regimes(name string, opts demo.Options, cfg Config, regimes ...demo.Regime) []Job {
	jobs := make([]Job, 0, len(regimes))
	for _, r := range regimes {
		o := opts
		o.Regime = r
		jobs = append(jobs, Job{Demo: name, Options: o, Config: cfg})
	}
	return jobs
}
