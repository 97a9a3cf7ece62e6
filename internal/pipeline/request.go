package pipeline

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"visitgate/internal/config"
	"visitgate/internal/dataType"
)

// RequestFromHTTP builds a RequestContext from a net/http request for
// hosts that do not construct one themselves. The client address comes
// from the first configured forwarding header that parses, falling
// back to the transport remote address. Parse failures leave the
// address unset; they never fail the build.
func RequestFromHTTP(cfg *config.MainConfig, r *http.Request) dataType.RequestContext {
	headers := make(dataType.Headers, len(r.Header))
	for k, vs := range r.Header {
		for _, v := range vs {
			headers.Add(k, v)
		}
	}

	var remote netip.Addr
	for _, headerName := range cfg.ClientIPHeaders {
		ipVal := r.Header.Get(headerName)
		if ipVal == "" {
			continue
		}
		if idx := strings.IndexByte(ipVal, ','); idx != -1 {
			ipVal = ipVal[:idx]
		}
		if addr, err := netip.ParseAddr(strings.TrimSpace(ipVal)); err == nil {
			remote = addr.Unmap()
			break
		}
	}
	if !remote.IsValid() {
		host := r.RemoteAddr
		if ipStr, _, err := net.SplitHostPort(host); err == nil {
			host = ipStr
		}
		if addr, err := netip.ParseAddr(host); err == nil {
			remote = addr.Unmap()
		}
	}

	path := r.URL.Path
	if path == "" {
		path = r.RequestURI
	}

	return dataType.RequestContext{
		Method:     r.Method,
		Path:       path,
		Headers:    headers,
		RemoteAddr: remote,
	}
}
