// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/device"
)

// Query is a driver call following the count-then-fill convention,
// see device.Driver.
type Query[T any] func(count *uint32, out []T) error

// Enumerate lists everything q reports in exactly two calls: one asking
// for the count, one filling a buffer of that size. The driver reporting
// more items on the second call is not retried, it is ErrEnumerationUnstable.
func Enumerate[T any](q Query[T]) ([]T, error) {
	var count uint32
	if err := q(&count, nil); err != nil {
		return nil, err
	}

	items := make([]T, count)
	filled := count
	if err := q(&filled, items); err != nil {
		if errors.Is(err, device.ErrIncomplete) {
			return nil, withKind(errors.Wrapf(err, "expected %d items", count), ErrEnumerationUnstable)
		}
		return nil, err
	}
	if filled > count {
		return nil, withKind(errors.Newf("driver reported %d items, then %d", count, filled), ErrEnumerationUnstable)
	}
	return items[:filled], nil
}
