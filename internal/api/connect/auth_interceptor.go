package connect

import (
	"context"
	"crypto/subtle"
	"time"

	"connectrpc.com/connect"
)

const (
	// APITokenHeader is the header name for the API token.
	APITokenHeader = "X-Api-Token"
)

// NewAuthInterceptor creates an interceptor that validates the API token
// from request metadata. An empty token disables the check.
func NewAuthInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token == "" {
				return next(ctx, req)
			}

			// Extract token from metadata
			got := req.Header().Get(APITokenHeader)
			if got == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, nil)
			}

			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return nil, connect.NewError(connect.CodeUnauthenticated, nil)
			}

			return next(ctx, req)
		}
	}
}

// NewTokenInterceptor attaches the API token to outgoing client requests.
func NewTokenInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token != "" && req.Spec().IsClient {
				req.Header().Set(APITokenHeader, token)
			}
			return next(ctx, req)
		}
	}
}

// NewTimeoutInterceptor bounds each request's handling time.
func NewTimeoutInterceptor(timeout time.Duration) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if timeout <= 0 {
				return next(ctx, req)
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, req)
		}
	}
}
