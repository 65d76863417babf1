package service

import "time"

// Option configures a service.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for attempt timing.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
