package enums

// Capability is a premium feature an actor may or may not be entitled to.
type Capability string

const (
	CapabilityUndo     Capability = "undo"
	CapabilityExtend   Capability = "extend"
	CapabilityFullPool Capability = "full_pool"
)
