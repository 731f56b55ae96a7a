package download

import (
	"net"
	"net/http"
	"net/url"
	"time"
)

// NewTransport returns a transport whose connect, TLS and response-header
// phases are each bounded by timeout. Body transfer is not bounded here;
// the Fetcher applies an idle timeout instead so large files can finish.
func NewTransport(timeout time.Duration, proxy func(*http.Request) (*url.URL, error)) *http.Transport {
	if proxy == nil {
		proxy = http.ProxyFromEnvironment
	}
	return &http.Transport{
		Proxy: proxy,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          16,
	}
}
