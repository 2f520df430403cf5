package sioengine

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultScheme = "http"
	DefaultHost   = "localhost"
	DefaultPath   = "socket.io"

	securedScheme = "https"
)

// Server is the normalized target of an engine.
type Server struct {
	Scheme  string
	Host    string
	Port    int
	Path    string
	Secured bool

	User     *url.Userinfo
	RawQuery string
	Fragment string
}

// ParseServer normalizes rawURL. Missing parts get the default scheme, host
// and path. A missing port is 443 for https and 80 for everything else.
func ParseServer(rawURL string) (Server, error) {
	str := strings.TrimSpace(rawURL)
	if str == "" {
		return Server{}, &MalformedURLError{URL: rawURL, Err: ErrEmptyURL}
	}

	// "localhost:8000/socket.io" has no scheme, so read it as an authority.
	if !strings.Contains(str, "://") && !strings.HasPrefix(str, "/") {
		str = "//" + str
	}

	u, err := url.Parse(str)
	if err != nil {
		return Server{}, &MalformedURLError{URL: rawURL, Err: err}
	}

	svr := Server{
		Scheme:   u.Scheme,
		Host:     u.Hostname(),
		Path:     u.Path,
		User:     u.User,
		RawQuery: u.RawQuery,
		Fragment: u.Fragment,
	}

	if svr.Scheme == "" {
		svr.Scheme = DefaultScheme
	}
	if svr.Host == "" {
		svr.Host = DefaultHost
	}
	if svr.Path == "" || svr.Path == "/" {
		svr.Path = DefaultPath
	}

	if port := u.Port(); port != "" {
		if svr.Port, err = strconv.Atoi(port); err != nil {
			return Server{}, &MalformedURLError{URL: rawURL, Err: err}
		}
		if svr.Port < 1 || svr.Port > 65535 {
			return Server{}, &MalformedURLError{URL: rawURL, Err: ErrPortRange.F(svr.Port)}
		}
	} else if svr.Scheme == securedScheme {
		svr.Port = 443
	} else {
		svr.Port = 80
	}

	svr.Secured = svr.Scheme == securedScheme
	return svr, nil
}

// Address is the host:port pair to dial.
func (s Server) Address() string { return net.JoinHostPort(s.Host, strconv.Itoa(s.Port)) }

// Endpoint builds the URL of the engine endpoint using scheme. The query of
// the original URL is kept and values in query are added on top of it.
func (s Server) Endpoint(scheme string, query url.Values) *url.URL {
	values, _ := url.ParseQuery(s.RawQuery)
	if values == nil {
		values = url.Values{}
	}
	for k, v := range query {
		values[k] = v
	}

	return &url.URL{
		Scheme:   scheme,
		User:     s.User,
		Host:     s.Address(),
		Path:     "/" + strings.Trim(s.Path, "/") + "/",
		RawQuery: values.Encode(),
	}
}

func (s Server) String() string {
	return (&url.URL{
		Scheme:   s.Scheme,
		User:     s.User,
		Host:     s.Address(),
		Path:     "/" + strings.TrimPrefix(s.Path, "/"),
		RawQuery: s.RawQuery,
		Fragment: s.Fragment,
	}).String()
}
