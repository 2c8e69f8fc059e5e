package dispatch

import "errors"

// Action selects which query a dispatch performs. All three reuse the same
// chain machinery; entries cached for one action never answer another.
type Action uint8

const (
	// CallMethod resolves and invokes a method.
	CallMethod Action = iota

	// RespondTo answers whether the receiver understands the selector,
	// without invoking anything.
	RespondTo

	// ReadConstant resolves a constant binding. Constants are resolved
	// once and cached by value.
	ReadConstant
)

var actionNames = [...]string{
	CallMethod:   "call-method",
	RespondTo:    "respond-to",
	ReadConstant: "read-constant",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "?"
}

// ErrAmbiguousBlockAndArgument is returned when a call site compiled with
// a block-pass argument also receives a literal block. The send is
// rejected before any cache entry is built.
var ErrAmbiguousBlockAndArgument = errors.New("dispatch: both a literal block and a block-pass argument supplied")
