package design

// Electrical creates a single electrical terminal, the leaf interface kind
// every net vertex ultimately resolves to.
func Electrical() *Interface {
	return NewInterface("electrical")
}

// Power creates a two-terminal supply interface with hv/lv electricals.
func Power() *Interface {
	p := NewInterface("power")
	// Structure is fixed at construction, the adds cannot fail.
	_ = p.AddSub("hv", Electrical())
	_ = p.AddSub("lv", Electrical())
	return p
}
