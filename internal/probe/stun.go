package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/pion/stun/v3"
)

// defaultSTUNTimeout bounds a query whose context has no deadline.
const defaultSTUNTimeout = 5 * time.Second

// STUN decoding errors.
var (
	errSTUNMalformed   = errors.New("stun: malformed message")
	errSTUNType        = errors.New("stun: not a binding success response")
	errSTUNTransaction = errors.New("stun: transaction id mismatch")
	errSTUNNoAddress   = errors.New("stun: xor-mapped-address not found")
	errSTUNFamily      = errors.New("stun: unsupported address family")
)

// QuerySTUN sends one binding request to server ("host:port") and returns
// the reflexive address the server observed. The read deadline follows ctx.
func QuerySTUN(ctx context.Context, server string) (netip.Addr, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", server)
	if err != nil {
		return netip.Addr{}, err
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultSTUNTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return netip.Addr{}, err
	}

	req, err := stun.Build(stun.TransactionID, stun.BindingRequest)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to build binding request: %w", err)
	}
	if _, err := conn.Write(req.Raw); err != nil {
		return netip.Addr{}, err
	}

	buf := make([]byte, 1500)
	n, err := conn.Read(buf)
	if err != nil {
		return netip.Addr{}, err
	}
	return parseBindingResponse(buf[:n], req.TransactionID)
}

// parseBindingResponse decodes a binding success response for txid and
// returns the address of its XOR-MAPPED-ADDRESS attribute.
func parseBindingResponse(pkt []byte, txid [stun.TransactionIDSize]byte) (netip.Addr, error) {
	res := &stun.Message{Raw: append([]byte(nil), pkt...)}
	if err := res.Decode(); err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %v", errSTUNMalformed, err)
	}
	if res.Type != stun.BindingSuccess {
		return netip.Addr{}, fmt.Errorf("%w: %s", errSTUNType, res.Type)
	}
	if res.TransactionID != txid {
		return netip.Addr{}, errSTUNTransaction
	}

	var mapped stun.XORMappedAddress
	if err := mapped.GetFrom(res); err != nil {
		if errors.Is(err, stun.ErrAttributeNotFound) {
			return netip.Addr{}, errSTUNNoAddress
		}
		return netip.Addr{}, fmt.Errorf("%w: %v", errSTUNMalformed, err)
	}

	addr, ok := netip.AddrFromSlice(mapped.IP)
	if !ok {
		return netip.Addr{}, errSTUNFamily
	}
	return addr.Unmap(), nil
}
