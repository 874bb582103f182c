package fletcher

import "encoding/binary"

// NewFletcher4Best constructs a Fletcher4 hasher using the widest
// implementation tier this host supports.
func NewFletcher4Best(order binary.ByteOrder) *Fletcher4 {
	f, err := NewFletcher4(order, BestAvailable())
	if err != nil {
		// Generic is always supported; BestAvailable never returns
		// an unsupported tier.
		f, _ = NewFletcher4(order, Generic)
	}
	return f
}

// NewFletcher2Best constructs a Fletcher2 hasher using the widest
// implementation tier this host supports.
func NewFletcher2Best(order binary.ByteOrder) *Fletcher2 {
	f, err := NewFletcher2(order, BestAvailable())
	if err != nil {
		f, _ = NewFletcher2(order, Generic)
	}
	return f
}
