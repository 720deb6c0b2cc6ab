// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/vkinit/core"
	"github.com/devblok/vkinit/device"
)

func TestEnumerateCountThenFill(t *testing.T) {
	c := qt.New(t)
	q := &query[device.ExtensionProperties]{items: extensions("a", "b", "c")}

	got, err := core.Enumerate[device.ExtensionProperties](q.call)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, extensions("a", "b", "c"))
	c.Assert(q.calls, qt.Equals, 2)
}

func TestEnumerateNothing(t *testing.T) {
	c := qt.New(t)
	q := &query[device.LayerProperties]{}

	got, err := core.Enumerate[device.LayerProperties](q.call)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.HasLen, 0)
	c.Assert(q.calls, qt.Equals, 2)
}

func TestEnumerateGrowsDuringFill(t *testing.T) {
	c := qt.New(t)
	q := &query[device.ExtensionProperties]{
		items: extensions("a", "b"),
		grow:  extensions("c"),
	}

	_, err := core.Enumerate[device.ExtensionProperties](q.call)
	c.Assert(err, qt.ErrorIs, core.ErrEnumerationUnstable)
	c.Assert(q.calls, qt.Equals, 2)
}

func TestEnumerateAppearsAfterEmptyCount(t *testing.T) {
	c := qt.New(t)
	q := &query[device.ExtensionProperties]{grow: extensions("late")}

	_, err := core.Enumerate[device.ExtensionProperties](q.call)
	c.Assert(err, qt.ErrorIs, core.ErrEnumerationUnstable)
	c.Assert(q.calls, qt.Equals, 2)
}

func TestEnumerateDriverError(t *testing.T) {
	c := qt.New(t)
	q := &query[device.ExtensionProperties]{err: errDriver}

	_, err := core.Enumerate[device.ExtensionProperties](q.call)
	c.Assert(err, qt.ErrorIs, errDriver)
	c.Assert(q.calls, qt.Equals, 1)
}
