package identity

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"
)

// Unknown is the sentinel returned when no usable identity can be resolved.
// The voting layer refuses it, so an unresolvable origin simply cannot vote.
const Unknown = "unknown"

const (
	maxIdentityLen = 64
	lookupTimeout  = 2 * time.Second
)

// Resolver turns request-origin signals into a best-effort stable voter
// identity string. It is a deduplication aid only, never authentication:
// anything it produces is spoofable by whoever controls the headers.
type Resolver struct {
	lookupURL string
	client    *http.Client
}

// NewResolver creates a resolver. lookupURL may be empty; when set it names
// a remote identity service consulted as a last resort, with a hard timeout.
func NewResolver(lookupURL string) *Resolver {
	return &Resolver{
		lookupURL: lookupURL,
		client:    &http.Client{Timeout: lookupTimeout},
	}
}

// FromRequest extracts the raw origin signals from an HTTP request and
// resolves them: the client hint header, then the proxy chain, then the
// socket address.
func (r *Resolver) FromRequest(req *http.Request) string {
	var chain []string
	for _, part := range strings.Split(req.Header.Get("X-Forwarded-For"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			chain = append(chain, part)
		}
	}
	if realIP := strings.TrimSpace(req.Header.Get("X-Real-Ip")); realIP != "" {
		chain = append(chain, realIP)
	}
	return r.Resolve(req.Context(), req.Header.Get("X-Voter-Hint"), chain, req.RemoteAddr)
}

// Resolve picks the first usable signal: a sane client hint, the first
// public address in the proxy chain, the remote socket address, and finally
// the remote lookup service. Everything failing resolves to Unknown rather
// than blocking the vote.
func (r *Resolver) Resolve(ctx context.Context, hint string, chain []string, remoteAddr string) string {
	if h := sanitizeHint(hint); h != "" {
		return h
	}

	for _, signal := range chain {
		if ip, ok := publicIP(signal); ok {
			return ip
		}
	}

	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		remoteAddr = host
	}
	if ip, ok := publicIP(remoteAddr); ok {
		return ip
	}

	return r.remoteLookup(ctx)
}

// remoteLookup asks the configured identity service for an identity. Any
// failure, timeout included, degrades to Unknown.
func (r *Resolver) remoteLookup(ctx context.Context) string {
	if r.lookupURL == "" {
		return Unknown
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.lookupURL, nil)
	if err != nil {
		return Unknown
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Unknown
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Unknown
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIdentityLen))
	if err != nil {
		return Unknown
	}
	if id := sanitizeHint(string(body)); id != "" {
		return id
	}
	return Unknown
}

func sanitizeHint(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" || strings.EqualFold(hint, Unknown) {
		return ""
	}
	if len(hint) > maxIdentityLen {
		hint = hint[:maxIdentityLen]
	}
	for _, r := range hint {
		if r < 0x20 || r == 0x7f {
			return ""
		}
	}
	return hint
}

func publicIP(s string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified() {
		return "", false
	}
	return addr.String(), true
}
