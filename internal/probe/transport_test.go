package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"
)

// fakeProxy accepts one connection, reads the greeting and answers reply.
func fakeProxy(t *testing.T, reply []byte) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		greeting := make([]byte, 3)
		if _, err := io.ReadFull(conn, greeting); err != nil {
			return
		}
		_, _ = conn.Write(reply)
	}()
	return ln.Addr().String()
}

func TestFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		family  Family
		network string
		name    string
	}{
		{family: FamilyAny, network: "tcp", name: "any"},
		{family: FamilyIPv4, network: "tcp4", name: "ipv4"},
		{family: FamilyIPv6, network: "tcp6", name: "ipv6"},
	}
	for _, tt := range tests {
		if got := tt.family.network(); got != tt.network {
			t.Errorf("%v.network() = %q, want %q", tt.family, got, tt.network)
		}
		if got := tt.family.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}
}

func TestTransportHTTPClient(t *testing.T) {
	t.Parallel()
	srv := newEchoServer(t)

	tr, err := NewTransport("", 2*time.Second, "privacyguard-test/1.0")
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}
	if tr.Proxied() {
		t.Error("expected direct transport")
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/ua", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := tr.HTTPClient(FamilyIPv4).Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "privacyguard-test/1.0" {
		t.Errorf("User-Agent = %q", body)
	}
}

func TestCheckProxy(t *testing.T) {
	t.Parallel()

	t.Run("direct transport needs no check", func(t *testing.T) {
		t.Parallel()
		tr, err := NewTransport("", time.Second, "")
		if err != nil {
			t.Fatal(err)
		}
		if err := tr.CheckProxy(context.Background()); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("socks5 proxy passes", func(t *testing.T) {
		t.Parallel()
		tr, err := NewTransport(fakeProxy(t, []byte{0x05, 0x00}), time.Second, "")
		if err != nil {
			t.Fatal(err)
		}
		if !tr.Proxied() {
			t.Error("expected proxied transport")
		}
		if err := tr.CheckProxy(context.Background()); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("proxy requiring auth is rejected", func(t *testing.T) {
		t.Parallel()
		tr, err := NewTransport(fakeProxy(t, []byte{0x05, 0xff}), time.Second, "")
		if err != nil {
			t.Fatal(err)
		}
		if err := tr.CheckProxy(context.Background()); !errors.Is(err, ErrProxyNotSOCKS5) {
			t.Errorf("expected ErrProxyNotSOCKS5, got %v", err)
		}
	})

	t.Run("http proxy is rejected", func(t *testing.T) {
		t.Parallel()
		tr, err := NewTransport(fakeProxy(t, []byte("HTTP/1.1 400 Bad Request\r\n\r\n")), time.Second, "")
		if err != nil {
			t.Fatal(err)
		}
		if err := tr.CheckProxy(context.Background()); !errors.Is(err, ErrProxyNotSOCKS5) {
			t.Errorf("expected ErrProxyNotSOCKS5, got %v", err)
		}
	})

	t.Run("closed port", func(t *testing.T) {
		t.Parallel()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		addr := ln.Addr().String()
		_ = ln.Close()

		tr, err := NewTransport(addr, time.Second, "")
		if err != nil {
			t.Fatal(err)
		}
		if err := tr.CheckProxy(context.Background()); !errors.Is(err, ErrProxyCannotConnect) {
			t.Errorf("expected ErrProxyCannotConnect, got %v", err)
		}
	})
}

func TestNewSuite(t *testing.T) {
	t.Parallel()
	srv := newEchoServer(t)

	s := newTestSuite(t, srv, nil)
	if s.Transport() == nil {
		t.Fatal("expected transport")
	}
	if s.Transport().Proxied() {
		t.Error("expected direct transport by default")
	}
}
