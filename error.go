package sioengine

import (
	erro "github.com/njones/sioengine/internal/errors"
)

const (
	ErrUnsupportedAction erro.String = "the %s engine does not support the %q action"
	ErrMalformedURL      erro.String = "malformed url %q: %w"
	ErrEmptyURL          erro.String = "empty url"
	ErrPortRange         erro.String = "port %d out of range"
	ErrLoadOptions       erro.String = "load options: %w"
)

// UnsupportedActionError is returned by every lifecycle operation that an
// engine does not implement.
type UnsupportedActionError struct {
	Engine string
	ID     string
	Action string
}

func (e *UnsupportedActionError) Error() string {
	return ErrUnsupportedAction.F(e.Engine, e.Action).KV("id", e.ID).Error()
}

func (e *UnsupportedActionError) Is(target error) bool { return target == error(ErrUnsupportedAction) }

// MalformedURLError is returned when an engine URL can not be parsed. No
// engine is built when this happens.
type MalformedURLError struct {
	URL string
	Err error
}

func (e *MalformedURLError) Error() string   { return ErrMalformedURL.F(e.URL, e.Err).Error() }
func (e *MalformedURLError) Unwrap() error   { return e.Err }
func (e *MalformedURLError) Is(t error) bool { return t == error(ErrMalformedURL) }
