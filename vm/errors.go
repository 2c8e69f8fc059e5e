package vm

import "fmt"

// DoesNotUnderstandError is the language-level error for a message send
// that resolved to no method after full lookup.
type DoesNotUnderstandError struct {
	ReceiverClass *Class
	Selector      string
}

func (e *DoesNotUnderstandError) Error() string {
	name := "?"
	if e.ReceiverClass != nil {
		name = e.ReceiverClass.Name
	}
	return fmt.Sprintf("%s does not understand #%s", name, e.Selector)
}

// UninitializedConstantError is the language-level error for a constant
// read that found no binding on the class or its ancestors.
type UninitializedConstantError struct {
	Class *Class
	Name  string
}

func (e *UninitializedConstantError) Error() string {
	owner := "?"
	if e.Class != nil {
		owner = e.Class.Name
	}
	return fmt.Sprintf("uninitialized constant %s::%s", owner, e.Name)
}
