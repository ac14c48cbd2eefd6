// Package capability binds abstract capabilities to the implementation
// registered for the running host version.
//
// A capability is a Go interface. Implementations register under
// "<tag>.<SimpleName>", where SimpleName is the interface's name, and the
// resolver looks up the name for its tag on first use:
//
//	capability.Provide[Chat, *chatV118](reg, "v1_18_R1", newChatV118)
//	r := capability.NewResolver(reg, tag)
//	chat, err := capability.Get[Chat](r)
//
// For binds against the default registry and the tag set by version.Init:
//
//	chat, err := capability.For[Chat]()
//
// Each capability moves through Unbound, Resolving and then Bound or Failed.
// Bindings are process-wide: every resolver over the same registry and tag
// shares them. Only one goroutine ever resolves a capability; concurrent
// first accesses wait for it. Bound and Failed are final: the instance is
// cached and a failure, including a panic while binding, is returned again
// without another lookup.
package capability
