// Package typeinfo models the host's type system for member resolution.
//
// A Type is a process-lifetime descriptor. Go types are described through
// reflect and cached so that one reflect.Type maps to exactly one *Type, which
// makes pointer equality the descriptor equality. Virtual types (a loaded wasm
// module, for instance) are assembled with a Builder.
//
// Go has no class hierarchy, so the model maps the host concepts as follows:
//
//   - supertype: the first embedded struct field (S embeds E => E is the supertype of S, *E of *S)
//   - primitive: an unnamed bool, integer or float type; its boxed form is the pointer to it
//   - private member: an unexported struct field
//   - static member / constructor: declared against the type with Declare
//   - synthetic: members the compiler generates (promoted methods, pointer wrappers,
//     zero-value constructors)
//   - bridge: the pointer-receiver wrapper generated for a value-receiver method
//
// Types are looked up by name through a Registry.
package typeinfo
