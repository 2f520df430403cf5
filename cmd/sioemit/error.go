package main

import erro "github.com/njones/sioengine/internal/errors"

const (
	ErrUsage  erro.String = "usage: sioemit [flags] event [args...]"
	ErrNoAcks erro.String = "%s can not emit with an ack"
	ErrNoAck  erro.String = "no ack for %q after %s"
)
