package filter

import (
	"iter"

	"github.com/Prakkie91/jobo-go/jobo"
)

// Jobs returns the jobs in the slice that match filter, preserving order.
// A nil filter matches everything.
func Jobs(filter Filter, jobs []jobo.Job) []jobo.Job {
	if filter == nil {
		return jobs
	}

	matches := make([]jobo.Job, 0, len(jobs))
	for _, job := range jobs {
		if filter.Evaluate(job) {
			matches = append(matches, job)
		}
	}
	return matches
}

// Seq narrows a job stream to the jobs matching filter. Errors from the
// underlying stream are passed through unchanged; a nil filter returns seq.
func Seq(filter Filter, seq iter.Seq2[jobo.Job, error]) iter.Seq2[jobo.Job, error] {
	if filter == nil {
		return seq
	}

	return func(yield func(jobo.Job, error) bool) {
		for job, err := range seq {
			if err != nil {
				yield(job, err)
				return
			}
			if !filter.Evaluate(job) {
				continue
			}
			if !yield(job, nil) {
				return
			}
		}
	}
}

// Limit stops seq after n items. n <= 0 means no limit.
func Limit[T any](n int, seq iter.Seq2[T, error]) iter.Seq2[T, error] {
	if n <= 0 {
		return seq
	}

	return func(yield func(T, error) bool) {
		count := 0
		for item, err := range seq {
			if !yield(item, err) || err != nil {
				return
			}
			count++
			if count >= n {
				return
			}
		}
	}
}
