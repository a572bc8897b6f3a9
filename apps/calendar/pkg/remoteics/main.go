// Package remoteics downloads iCalendar documents published elsewhere.
package remoteics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	userAgent      = "planner.xdoubleu.com-import/1.0"
	requestTimeout = 10 * time.Second
	dialTimeout    = 5 * time.Second
	maxBodySize    = 5 << 20
)

var (
	ErrUnsupportedURL = errors.New("unsupported calendar url")
	ErrPrivateHost    = errors.New("private hosts are not allowed")
	ErrNoCalendar     = errors.New("no calendar found at url")
)

type client struct {
	logger       *slog.Logger
	allowPrivate bool
}

func New(logger *slog.Logger) Client {
	return client{
		logger:       logger,
		allowPrivate: false,
	}
}

// Fetch returns the calendar at rawURL. webcal:// links are fetched over
// https. An HTML page is searched for a text/calendar alternate link.
func (client client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	target, err := client.validate(rawURL)
	if err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.MaxDepth(2), //nolint:mnd //page and its calendar link
		colly.MaxBodySize(maxBodySize),
	)
	c.WithTransport(client.transport())
	c.SetRequestTimeout(requestTimeout)

	var data []byte

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("Accept", "text/calendar, text/html;q=0.5")
	})

	c.OnResponse(func(r *colly.Response) {
		if data != nil || !isCalendar(r) {
			return
		}
		data = r.Body
	})

	c.OnHTML(`link[rel="alternate"][type="text/calendar"]`, func(h *colly.HTMLElement) {
		if data != nil {
			return
		}

		link := h.Request.AbsoluteURL(h.Attr("href"))
		if _, validateErr := client.validate(link); validateErr != nil {
			client.logger.Debug(
				"ignoring calendar link",
				slog.String("link", link),
				slog.String("reason", validateErr.Error()),
			)
			return
		}

		_ = h.Request.Visit(link)
	})

	if err = c.Visit(target.String()); err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if data == nil {
		return nil, ErrNoCalendar
	}

	return data, nil
}

func isCalendar(r *colly.Response) bool {
	if strings.Contains(r.Headers.Get("Content-Type"), "text/calendar") {
		return true
	}

	return bytes.HasPrefix(bytes.TrimSpace(r.Body), []byte("BEGIN:VCALENDAR"))
}

func (client client) validate(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedURL, err)
	}

	switch parsed.Scheme {
	case "webcal":
		parsed.Scheme = "https"
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrUnsupportedURL)
	}

	if !client.allowPrivate && isPrivateHost(host) {
		return nil, fmt.Errorf("%w: %s", ErrPrivateHost, host)
	}

	return parsed, nil
}

// transport dials only public addresses. The check runs on the resolved
// address, so hostnames, redirects and followed links are all covered.
func (client client) transport() *http.Transport {
	dialer := &net.Dialer{
		Timeout: dialTimeout,
		Control: func(_ string, address string, _ syscall.RawConn) error {
			if client.allowPrivate {
				return nil
			}
			return checkDialAddress(address)
		},
	}

	//nolint:exhaustruct //defaults
	return &http.Transport{
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   dialTimeout,
		ResponseHeaderTimeout: requestTimeout,
		MaxIdleConns:          1,
	}
}

func checkDialAddress(address string) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPrivateHost, address)
	}

	if isPrivateAddr(addrPort.Addr()) {
		return fmt.Errorf("%w: %s", ErrPrivateHost, addrPort.Addr())
	}

	return nil
}

func isPrivateHost(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}

	return isPrivateAddr(addr)
}

func isPrivateAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified() || addr.IsMulticast()
}
