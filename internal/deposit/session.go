package deposit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"

	"github.com/zombor/palpa-deposit/internal/fault"
	"github.com/zombor/palpa-deposit/internal/locale"
)

// maxResponseSize caps how much of a service response is read
const maxResponseSize = 4 << 20

// lookupRequest is the JSON body of the lookup POST
type lookupRequest struct {
	EAN string `json:"ean"`
}

// lookupResponse is the JSON answer to the lookup POST. PayLoad is null when
// the EAN is not registered; Message then explains why.
type lookupResponse struct {
	PayLoad *payload `json:"payLoad"`
	Message string   `json:"message"`
}

// session is the state of one lookup: its cookies and the CSRF token
type session struct {
	client *Client
	http   *http.Client
	token  string
	logger *slog.Logger
}

func (c *Client) newSession(logger *slog.Logger) (*session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &session{
		client: c,
		http: &http.Client{
			Jar:       jar,
			Timeout:   c.timeout,
			Transport: c.transport,
		},
		logger: logger,
	}, nil
}

// loadToken opens the lookup page, which starts the server session, and
// keeps the CSRF token found on it
func (s *session) loadToken(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.pageURL(), nil)
	if err != nil {
		return fmt.Errorf("creating page request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching lookup page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fault.New(fault.ServiceProtocol, fmt.Sprintf("lookup page returned status %d", resp.StatusCode))
	}

	token, err := extractCSRFToken(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}
	s.token = token
	s.logger.Debug("Found CSRF token")
	return nil
}

// setLocale stores the locale preference in the session cookies. The
// response itself carries nothing of interest.
func (s *session) setLocale(ctx context.Context, l locale.Locale) error {
	url := fmt.Sprintf("%s/locale/%s", s.client.origin, l.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating locale request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("setting locale %s: %w", l, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	return nil
}

// lookup posts the EAN and returns the payload of the answer
func (s *session) lookup(ctx context.Context, ean EAN) (*payload, error) {
	body, err := json.Marshal(lookupRequest{EAN: ean.String()})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.pageURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating lookup request: %w", err)
	}
	s.setHeaders(req)
	// Assigned directly to keep the exact spelling on the wire.
	req.Header["X-CSRF-TOKEN"] = []string{s.token}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling lookup endpoint: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading lookup response: %w", err)
	}

	var out lookupResponse
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("lookup returned status %d", resp.StatusCode)
		if json.Unmarshal(data, &out) == nil && out.Message != "" {
			msg += ": " + out.Message
		}
		return nil, fault.New(fault.ServiceProtocol, msg)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fault.Wrap(fault.ServiceProtocol,
			fmt.Sprintf("decoding lookup response (status %d)", resp.StatusCode), err)
	}

	if out.PayLoad == nil {
		return nil, fault.New(fault.InvalidEANInput, out.Message)
	}
	return out.PayLoad, nil
}

// setHeaders applies the header set the service's own page sends with its
// XHR calls
func (s *session) setHeaders(req *http.Request) {
	origin := s.client.origin
	req.Host = s.client.host
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", origin)
	req.Header.Set("Referer", s.client.pageURL())
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
}
