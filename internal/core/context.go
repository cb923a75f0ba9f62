package core

import (
	"context"
	"time"
)

// RequestTimeout bounds each listing request
const RequestTimeout = 20 * time.Second

// WithRequestTimeout derives a context bounded by RequestTimeout
func WithRequestTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, RequestTimeout)
}
