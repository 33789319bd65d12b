package compiler

// bindingTable assigns external variable names to dense slots in strict
// first-use order. A name maps to exactly one slot for the lifetime of a
// compilation; slot numbering is a pure function of resolve call order.
type bindingTable struct {
	slots map[string]int
	names []string
}

func newBindingTable() *bindingTable {
	return &bindingTable{slots: make(map[string]int)}
}

// resolve returns the slot for name, allocating the next free slot on
// first use.
func (b *bindingTable) resolve(name string) int {
	if slot, ok := b.slots[name]; ok {
		return slot
	}
	slot := len(b.names)
	b.slots[name] = slot
	b.names = append(b.names, name)
	return slot
}

// variables returns the bound names in insertion order.
func (b *bindingTable) variables() []string {
	return b.names
}
