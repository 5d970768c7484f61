// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package vartype provides values that may be absent, like a heading before the first compass
// reading or a fix before the first GPS report.
package vartype

import (
	"fmt"
)

// Optional holds a value and whether it has been set. The zero value is unset.
type Optional[T any] struct {
	value T
	isset bool
}

// Some returns an Optional that is set to value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, isset: true}
}

// Set assigns the value and marks the Optional as set.
func (o *Optional[T]) Set(value T) {
	o.value = value
	o.isset = true
}

// Reset clears the value.
func (o *Optional[T]) Reset() {
	var zero T
	o.value = zero
	o.isset = false
}

// Get returns the value and whether it has been set. An unset Optional returns the zero value.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.isset
}

// Or returns the value if set and fallback otherwise.
func (o Optional[T]) Or(fallback T) T {
	if !o.isset {
		return fallback
	}
	return o.value
}

// String renders unset values as "--".
func (o Optional[T]) String() string {
	if !o.isset {
		return "--"
	}
	return fmt.Sprint(o.value)
}
