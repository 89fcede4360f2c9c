// Package transport provides a single read/write contract over either a
// plaintext or TLS-wrapped connection, per §4.6. It is a dispatch facade
// only; no request handling lives here.
package transport

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/pires/go-proxyproto"
)

// Stream is a cooperative byte stream backed by either a plain or a
// TLS-wrapped connection. Both variants satisfy net.Conn; Stream adds
// nothing beyond naming which one is active.
type Stream struct {
	net.Conn
	tls bool
}

// IsTLS reports whether this Stream completed a TLS handshake.
func (s *Stream) IsTLS() bool { return s.tls }

// New wraps conn, performing a TLS handshake if config is non-nil. With a
// nil config the returned Stream is Plain. New does no PROXY protocol
// handling itself; a conn accepted from ProxyListener already has any
// PROXY header stripped.
func New(ctx context.Context, conn net.Conn, config *tls.Config) (*Stream, error) {
	if config == nil {
		return &Stream{Conn: conn}, nil
	}

	tlsConn := tls.Server(conn, config)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return &Stream{Conn: tlsConn, tls: true}, nil
}

// ProxyListener wraps l so that accepted connections have PROXY protocol
// v1/v2 headers (if present) transparently stripped before New is called,
// letting deployments sit behind a load balancer that speaks PROXY
// protocol without the Processor ever seeing it.
func ProxyListener(l net.Listener) net.Listener {
	return &proxyproto.Listener{Listener: l}
}
