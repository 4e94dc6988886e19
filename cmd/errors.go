package cmd

import (
	"errors"
	"fmt"

	"github.com/Prakkie91/jobo-go/jobo"
)

// describeError adds a hint for the API failures a CLI user can act on
func describeError(err error) string {
	var rateLimit *jobo.RateLimitError

	switch {
	case errors.Is(err, jobo.ErrUnauthorized):
		return fmt.Sprintf("%v (check api.key, JOBO_API_KEY or --api-key)", err)
	case errors.As(err, &rateLimit) && rateLimit.RetryAfter > 0:
		return fmt.Sprintf("%v (retry after %s)", err, rateLimit.RetryAfter)
	case errors.Is(err, jobo.ErrRateLimited):
		return fmt.Sprintf("%v (rate limited, try again later)", err)
	default:
		return err.Error()
	}
}
