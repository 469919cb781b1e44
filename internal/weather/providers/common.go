package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/metrics"
)

var (
	errNotFound      = errors.New("not found")
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errMalformedBody = errors.New("malformed response body")
)

// newCircuitBreaker returns the breaker settings shared by all providers.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// requester executes a single HTTP request through a circuit breaker and
// decodes the JSON body. It never retries: a failed call is surfaced as is.
type requester struct {
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	metrics *metrics.Collector
}

func (r requester) getJSON(
	ctx context.Context,
	endpoint string,
	buildRequest func() (*http.Request, error),
	out any,
) error {
	if r.client == nil {
		return errNoHTTPClient
	}

	req, err := buildRequest()
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)

	// Client errors (unknown place, bad request) are returned as the result
	// rather than the error so they do not count against the breaker.
	result, err := r.circuit.Execute(func() (interface{}, error) {
		resp, execErr := r.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, errRateLimited
		case resp.StatusCode >= 500:
			return nil, errServerError
		case resp.StatusCode == http.StatusNotFound:
			return errNotFound, nil
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode), nil
		}

		if decErr := json.NewDecoder(resp.Body).Decode(out); decErr != nil {
			return fmt.Errorf("%w: %v", errMalformedBody, decErr), nil
		}
		return nil, nil
	})
	if err == nil {
		if clientErr, ok := result.(error); ok {
			err = clientErr
		}
	}

	r.metrics.ObserveUpstream(endpoint, resultLabel(err))

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", errCircuitOpen, err)
	}
	return err
}

// resultLabel turns a request error into a low-cardinality metric label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errNotFound):
		return "not_found"
	case errors.Is(err, errRateLimited):
		return "rate_limited"
	case errors.Is(err, errServerError):
		return "server_error"
	case errors.Is(err, errUnexpected):
		return "unexpected_status"
	case errors.Is(err, errMalformedBody):
		return "malformed"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	default:
		return "transport_error"
	}
}
