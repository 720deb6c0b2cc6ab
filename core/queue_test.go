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

func TestGraphicsFamilyIsLowestIndex(t *testing.T) {
	c := qt.New(t)
	families := []device.QueueFamilyProperties{
		{Flags: device.QueueTransfer, QueueCount: 2},
		{Flags: device.QueueGraphics, QueueCount: 0},
		{Flags: device.QueueGraphics | device.QueueCompute, QueueCount: 16},
		{Flags: device.QueueGraphics, QueueCount: 1},
	}

	sel := core.GraphicsFamily(families)
	c.Assert(sel.Found, qt.IsTrue)
	c.Assert(sel.GraphicsFamily, qt.Equals, uint32(2))
}

func TestGraphicsFamilyNotFound(t *testing.T) {
	c := qt.New(t)

	c.Assert(core.GraphicsFamily(nil).Found, qt.IsFalse)
	c.Assert(core.GraphicsFamily([]device.QueueFamilyProperties{
		{Flags: device.QueueCompute, QueueCount: 4},
	}), qt.Equals, core.QueueFamilySelection{})
}

func TestFindQueueFamilies(t *testing.T) {
	c := qt.New(t)
	pd := gpu("A", 4096, 256, device.QueueTransfer, device.QueueGraphics)

	families, sel, err := core.FindQueueFamilies(pd)
	c.Assert(err, qt.IsNil)
	c.Assert(families, qt.HasLen, 2)
	c.Assert(sel, qt.Equals, core.QueueFamilySelection{Found: true, GraphicsFamily: 1})
	c.Assert(pd.families.calls, qt.Equals, 2)
}

func TestFindQueueFamiliesFailure(t *testing.T) {
	c := qt.New(t)
	pd := gpu("A", 4096, 256, device.QueueGraphics)
	pd.families.err = errDriver

	_, _, err := core.FindQueueFamilies(pd)
	c.Assert(err, qt.ErrorIs, errDriver)
}
