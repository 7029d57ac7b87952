package fixtures

import (
	"fmt"
	"net/netip"
	"sync"
)

// AddressPool hands out host addresses of a subnet, skipping the network and gateway
// addresses. It is safe for concurrent use.
type AddressPool struct {
	mu     sync.Mutex
	prefix netip.Prefix
	next   netip.Addr
}

func NewAddressPool(subnet string) (*AddressPool, error) {
	prefix, err := netip.ParsePrefix(subnet)
	if err != nil {
		return nil, fmt.Errorf("parsing subnet %q: %w", subnet, err)
	}
	prefix = prefix.Masked()
	return &AddressPool{prefix: prefix, next: prefix.Addr().Next().Next()}, nil
}

// Next returns the next free address. The pool wraps around once the subnet is exhausted.
func (p *AddressPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	addr := p.next
	p.next = addr.Next()
	if !p.prefix.Contains(p.next) || isBroadcast(p.prefix, p.next) {
		p.next = p.prefix.Addr().Next().Next()
	}
	return addr.String()
}

func isBroadcast(prefix netip.Prefix, addr netip.Addr) bool {
	return addr.Is4() && !prefix.Contains(addr.Next())
}
