package gateway

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// proxy forwards validated requests to the core service and streams the
// response back unchanged.
type proxy struct {
	serverURL string
	client    *http.Client
	logger    *zerolog.Logger
}

func newProxy(serverURL string, logger *zerolog.Logger) *proxy {
	return &proxy{
		serverURL: serverURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

// forward replays r against the core service, substituting body when the
// handler already consumed the original.
func (p *proxy) forward(w http.ResponseWriter, r *http.Request, body []byte) {
	target := p.serverURL + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else if r.Body != nil {
		reader = r.Body
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, reader)
	if err != nil {
		p.logger.Error().Err(err).Str("target", target).Msg("failed to build upstream request")
		http.Error(w, `{"error":"upstream unavailable"}`, http.StatusBadGateway)
		return
	}
	req.Header = r.Header.Clone()

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Error().Err(err).Str("target", target).Msg("upstream request failed")
		http.Error(w, `{"error":"upstream unavailable"}`, http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		p.logger.Error().Err(err).Msg("failed to stream upstream response")
	}
}
