package transport

import (
	"time"

	eiop "github.com/njones/sioengine/engineio/protocol"
)

type state int

const (
	stateUninitialized state = iota
	stateConnecting
	stateConnected
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateConnected:
		return "connected"
	case stateClosed:
		return "closed"
	}
	return "uninitialized"
}

type session struct {
	eiop.Handshake

	socketID  string
	lastBeat  time.Time
	pingLimit time.Duration
}

func newSession(hs eiop.Handshake) session {
	return session{
		Handshake: hs,
		lastBeat:  time.Now(),
		pingLimit: hs.PingInterval.Std() + hs.PingTimeout.Std(),
	}
}

func (s session) needsHeartbeat(now time.Time) bool {
	return now.Sub(s.lastBeat) >= s.PingInterval.Std()
}
