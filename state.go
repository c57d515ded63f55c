package easel

import "reflect"

type stateKey struct {
	name string
	typ  reflect.Type
}

// State returns the value named name, creating it with init on first
// use. Values of different types never collide, even under one name.
// The pointer stays valid until DeleteState.
func State[T any](e *Engine, name string, init func() T) *T {
	k := stateKey{name: name, typ: reflect.TypeFor[T]()}
	if v, ok := e.states[k]; ok {
		return v.(*T)
	}
	p := new(T)
	if init != nil {
		*p = init()
	}
	e.states[k] = p
	return p
}

// DeleteState drops the value of type T named name. It reports whether
// one existed.
func DeleteState[T any](e *Engine, name string) bool {
	k := stateKey{name: name, typ: reflect.TypeFor[T]()}
	if _, ok := e.states[k]; !ok {
		return false
	}
	delete(e.states, k)
	return true
}
