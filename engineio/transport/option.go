package transport

import (
	"net/http"
	"net/url"
	"time"

	"github.com/njones/sioengine"
)

// The option keys read by the transports, on top of the sioengine ones.
const (
	OptTransport = "transport"
	OptTimeout   = "timeout"
	OptNamespace = "namespace"
	OptParser    = "parser"
	OptHeaders   = "headers"
	OptQuery     = "query"
	OptAuth      = "auth"
)

const defaultTimeout = 20 * time.Second

// Defaults are the transport defaults. They sit between
// sioengine.DefaultOptions and the caller's overrides.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		OptTransport: Websocket.String(),
		OptTimeout:   defaultTimeout.String(),
		OptNamespace: "/",
		OptParser:    "json",
		OptHeaders:   map[string]interface{}{},
		OptQuery:     map[string]interface{}{},
	}
}

func timeoutFrom(opts sioengine.Options) time.Duration {
	if d := opts.Duration(OptTimeout); d > 0 {
		return d
	}
	return defaultTimeout
}

func namespaceFrom(opts sioengine.Options) string {
	ns := opts.String(OptNamespace)
	switch {
	case ns == "":
		return "/"
	case ns[0] != '/':
		return "/" + ns
	}
	return ns
}

func headersFrom(opts sioengine.Options) http.Header {
	header := http.Header{}
	for k, v := range opts.Map(OptHeaders) {
		header.Set(k, stringify(v))
	}
	return header
}

func queryFrom(opts sioengine.Options) url.Values {
	query := url.Values{}
	for k, v := range opts.Map(OptQuery) {
		query.Set(k, stringify(v))
	}
	return query
}

// authFrom returns the CONNECT payload, nil when there is none.
func authFrom(opts sioengine.Options) interface{} {
	if auth := opts.Map(OptAuth); len(auth) > 0 {
		return map[string]interface{}(auth)
	}
	return nil
}
