package filter

import (
	"github.com/Prakkie91/jobo-go/jobo"
)

// Filter defines the basic interface for job filters
type Filter interface {
	// Evaluate checks if a job matches the filter criteria
	Evaluate(job jobo.Job) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Match is Evaluate with the runtime error surfaced
	Match(job jobo.Job) (bool, error)

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}
