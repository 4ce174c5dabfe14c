package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stx-trader/internal/domain"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetBaseURL(strings.TrimRight(baseURL, "/"))
	c.SetTimeout(timeout)
	c.SetHeader("Accept", "application/json")
	return c
}

// doGet executes req and returns the body of a 2xx response. Any other
// status becomes a *domain.StatusError.
func doGet(ctx context.Context, upstream string, req *resty.Request, path string) ([]byte, error) {
	resp, err := req.SetContext(ctx).Get(path)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", upstream, err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, &domain.StatusError{
			Upstream: upstream,
			Code:     resp.StatusCode(),
			Body:     strings.TrimSpace(resp.String()),
		}
	}
	return resp.Body(), nil
}
