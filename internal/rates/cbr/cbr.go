// Package cbr fetches daily exchange rates published by the Central Bank of
// Russia as XML.
package cbr

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"finreport/internal/core"
	"finreport/internal/log"
	"finreport/internal/rates"
)

// DefaultBaseURL is the daily rates endpoint.
const DefaultBaseURL = "https://www.cbr.ru/scripts/XML_daily.asp"

// queryDateLayout is the date_req format expected by the endpoint.
const queryDateLayout = "02/01/2006"

var ErrMalformedRates = errors.New("malformed rates document")

// valCurs mirrors the XML_daily.asp document.
type valCurs struct {
	XMLName xml.Name `xml:"ValCurs"`
	Date    string   `xml:"Date,attr"`
	Valutes []valute `xml:"Valute"`
}

type valute struct {
	CharCode string `xml:"CharCode"`
	Nominal  string `xml:"Nominal"`
	Value    string `xml:"Value"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

var _ rates.Fetcher = (*Client)(nil)

// New creates a client for baseURL (DefaultBaseURL when empty).
func New(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
		logger:     log.OrDiscard(logger).WithComponent(log.ComponentRates),
	}
}

// newHTTPClient creates a client with dial and header timeouts bounded by
// the overall request timeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// FetchRates downloads and parses the rates of date.
func (c *Client) FetchRates(ctx context.Context, date time.Time) (core.Rates, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("date_req", date.Format(queryDateLayout))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	c.logger.DebugContext(ctx, "Requesting rates", log.FieldURL, u.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get rates: unexpected status %d", resp.StatusCode)
	}

	return ParseRates(resp.Body)
}

// ParseRates decodes a ValCurs document into per-unit rates. A rate that is
// not a number invalidates the whole document.
func ParseRates(r io.Reader) (core.Rates, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var doc valCurs
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRates, err)
	}

	out := make(core.Rates, len(doc.Valutes))
	for _, v := range doc.Valutes {
		code := strings.ToUpper(strings.TrimSpace(v.CharCode))
		if code == "" {
			return nil, fmt.Errorf("%w: valute without CharCode", ErrMalformedRates)
		}
		value, err := core.ParseAmount(v.Value)
		if err != nil || strings.TrimSpace(v.Value) == "" {
			return nil, fmt.Errorf("%w: %s value %q", ErrMalformedRates, code, v.Value)
		}
		nominal := 1.0
		if strings.TrimSpace(v.Nominal) != "" {
			nominal, err = core.ParseAmount(v.Nominal)
			if err != nil || nominal <= 0 {
				return nil, fmt.Errorf("%w: %s nominal %q", ErrMalformedRates, code, v.Nominal)
			}
		}
		out[code] = value / nominal
	}
	return out, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder().Reader(input), nil
	case "utf-8", "utf8":
		return input, nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}
