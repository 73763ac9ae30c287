package machine

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// DefaultResolveTimeout is the default DNS query timeout.
const DefaultResolveTimeout = 2 * time.Second

// Resolver looks up PC names against the LAN DNS server (usually the
// router), so the dashboard can show which address each PC currently has.
type Resolver struct {
	server  string // host:port of the DNS server
	timeout time.Duration
	client  *dns.Client
}

// ResolverOption is a functional option for configuring a Resolver.
type ResolverOption func(*Resolver) error

// WithResolveTimeout sets the DNS query timeout.
func WithResolveTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		r.timeout = d
		return nil
	}
}

// NewResolver creates a Resolver querying the given server. A server
// without a port gets :53.
func NewResolver(server string, opts ...ResolverOption) (*Resolver, error) {
	if server == "" {
		return nil, fmt.Errorf("resolver: server must not be empty")
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}

	r := &Resolver{
		server:  server,
		timeout: DefaultResolveTimeout,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("resolver: %w", err)
		}
	}

	r.client = &dns.Client{
		Timeout: r.timeout,
	}

	return r, nil
}

// Lookup returns the first IPv4 address for name. Identifiers that are
// already IP addresses are returned unchanged without a query.
func (r *Resolver) Lookup(ctx context.Context, name string) (string, error) {
	if ip := net.ParseIP(name); ip != nil {
		return ip.String(), nil
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeA)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", name, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("resolve %s: rcode %s", name, dns.RcodeToString[resp.Rcode])
	}

	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A.String(), nil
		}
	}
	return "", fmt.Errorf("resolve %s: no A record in answer", strings.TrimSuffix(name, "."))
}
