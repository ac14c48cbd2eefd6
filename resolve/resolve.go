package resolve

import (
	"github.com/wippyai/hostbridge/member"
	"github.com/wippyai/hostbridge/typeinfo"
)

// Method resolves a method with the Default resolver.
func Method(t *typeinfo.Type, name string, params ...*typeinfo.Type) (*typeinfo.Method, error) {
	return Default.Method(t, name, params...)
}

// Constructor resolves a constructor with the Default resolver.
func Constructor(t *typeinfo.Type, params ...*typeinfo.Type) (*typeinfo.Constructor, error) {
	return Default.Constructor(t, params...)
}

// Field resolves a field by name with the Default resolver.
func Field(t *typeinfo.Type, name string) (*typeinfo.Field, error) {
	return Default.Field(t, name)
}

// FindField runs a field query with the Default resolver.
func FindField(t *typeinfo.Type, q *member.FieldQuery, index int) (*typeinfo.Field, error) {
	return Default.FindField(t, q, index)
}

// FindMethod runs a method query with the Default resolver.
func FindMethod(t *typeinfo.Type, q *member.MethodQuery, index int) (*typeinfo.Method, error) {
	return Default.FindMethod(t, q, index)
}

// FindConstructor runs a constructor query with the Default resolver.
func FindConstructor(t *typeinfo.Type, q *member.ConstructorQuery, index int) (*typeinfo.Constructor, error) {
	return Default.FindConstructor(t, q, index)
}
