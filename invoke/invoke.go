package invoke

import "github.com/wippyai/hostbridge/typeinfo"

// Call invokes a method with the Default invoker.
func Call(m *typeinfo.Method, recv any, args ...any) (any, error) {
	return Default.Call(m, recv, args...)
}

// New invokes a constructor with the Default invoker.
func New(c *typeinfo.Constructor, args ...any) (any, error) {
	return Default.New(c, args...)
}

// Get reads a field with the Default invoker.
func Get(f *typeinfo.Field, recv any) (any, error) {
	return Default.Get(f, recv)
}

// Set writes a field with the Default invoker.
func Set(f *typeinfo.Field, recv any, value any) error {
	return Default.Set(f, recv, value)
}

// Method resolves and calls a method with the Default invoker.
func Method(t *typeinfo.Type, recv any, name string, args ...any) (any, error) {
	return Default.Method(t, recv, name, args...)
}

// Instantiate resolves and calls a constructor with the Default invoker.
func Instantiate(t *typeinfo.Type, args ...any) (any, error) {
	return Default.Instantiate(t, args...)
}
