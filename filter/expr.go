package filter

import (
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/vm"

	"github.com/Prakkie91/jobo-go/jobo"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	extra      map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.extra, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		extra: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var defaultCompiler = NewExprCompiler(WithCache(256))

// Compile compiles expression with a shared, cached compiler
func Compile(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}

type exprCompiler struct {
	extra map[string]any
	cache *lruCache
}

// Compile compiles an expression into an executable filter.
// The expression is type-checked against the environment of an empty job,
// so misspelled variables fail here rather than at evaluation time.
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
			Position:   -1,
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(newEnvironment(jobo.Job{}, c.extra)),
		expr.AsBool(),
	)
	if err != nil {
		cerr := &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Position:   -1,
			Err:        err,
		}
		var fileErr *file.Error
		if errors.As(err, &fileErr) {
			cerr.Reason = fileErr.Message
			cerr.Position = fileErr.Column
		}
		return nil, cerr
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		extra:      c.extra,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate reports whether job matches. Jobs that fail to evaluate do not match.
func (f *exprFilter) Evaluate(job jobo.Job) bool {
	ok, err := f.Match(job)
	return err == nil && ok
}

// Match evaluates the filter against job
func (f *exprFilter) Match(job jobo.Job) (bool, error) {
	result, err := expr.Run(f.program, newEnvironment(job, f.extra))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			JobID:      job.ID,
			Reason:     "runtime error",
			Err:        err,
		}
	}

	// AsBool() guarantees the result type
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// addHelperFunctions adds the job-independent helpers to env
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// Case-insensitive string helpers
	env["icontains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["istartsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["iendsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	env["now"] = time.Now
}

// newEnvironment builds the evaluation environment for a single job
func newEnvironment(job jobo.Job, extra map[string]any) map[string]any {
	env := make(map[string]any, 32+len(extra))

	addHelperFunctions(env)

	env["Job"] = job

	// Job-specific helpers
	env["inCountry"] = createLocationFunc(job.Locations, func(l jobo.JobLocation) string { return l.Country })
	env["inCity"] = createLocationFunc(job.Locations, func(l jobo.JobLocation) string { return l.City })
	env["hasSource"] = func(source string) bool {
		return strings.EqualFold(job.Source, source)
	}

	// Direct job properties for convenience
	env["Title"] = job.Title
	env["Company"] = job.Company.Name
	env["Source"] = job.Source
	env["IsRemote"] = job.IsRemote
	env["Locations"] = locationLabels(job.Locations)
	env["Posted"] = postedAt(job)
	env["EmploymentType"] = job.EmploymentType
	env["WorkplaceType"] = job.WorkplaceType
	env["ExperienceLevel"] = job.ExperienceLevel

	var minSalary, maxSalary float64
	var currency string
	if c := job.Compensation; c != nil {
		if c.Min != nil {
			minSalary = *c.Min
		}
		if c.Max != nil {
			maxSalary = *c.Max
		}
		currency = c.Currency
	}
	env["MinSalary"] = minSalary
	env["MaxSalary"] = maxSalary
	env["Currency"] = currency

	maps.Copy(env, extra)

	return env
}

func createLocationFunc(locations []jobo.JobLocation, field func(jobo.JobLocation) string) func(string) bool {
	return func(want string) bool {
		for _, loc := range locations {
			if strings.EqualFold(field(loc), want) {
				return true
			}
		}
		return false
	}
}

func locationLabels(locations []jobo.JobLocation) []string {
	labels := make([]string, 0, len(locations))
	for _, loc := range locations {
		if s := loc.String(); s != "" {
			labels = append(labels, s)
		}
	}
	return labels
}

// postedAt prefers the listing's own posting date over when the API first saw it
func postedAt(job jobo.Job) time.Time {
	if job.DatePosted != nil && !job.DatePosted.IsZero() {
		return job.DatePosted.Time
	}
	return job.CreatedAt.Time
}
