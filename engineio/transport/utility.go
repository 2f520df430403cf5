package transport

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/njones/sioengine"
)

// newHTTPClient builds the client shared by the polling requests and the
// websocket dial. Certificates are only checked when check_ssl is set.
func newHTTPClient(opts sioengine.Options) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: !opts.CheckSSL()}
	return &http.Client{Transport: tr}
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// timestamp is the cache busting "t" query value of a polling request.
func timestamp() string { return strconv.FormatInt(time.Now().UnixNano(), 36) }
