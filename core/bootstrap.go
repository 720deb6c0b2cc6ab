// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/device"
	"github.com/google/uuid"
	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"
)

// Context owns everything the startup sequence created.
// Destroy it before the driver goes away.
type Context struct {
	Session uuid.UUID

	Instance    device.Instance
	Diagnostics *Diagnostics
	Selection   *SelectionReport
	Device      device.LogicalDevice
	Queue       device.Queue

	Extensions []string
	Layers     []string

	log logrus.FieldLogger
}

// PhysicalDevice is the selected candidate
func (c *Context) PhysicalDevice() *Candidate {
	best, _ := c.Selection.Best()
	return best
}

// GraphicsFamily is the queue family the queue belongs to
func (c *Context) GraphicsFamily() uint32 {
	if best := c.PhysicalDevice(); best != nil {
		return best.Queues.GraphicsFamily
	}
	return 0
}

// Destroy releases everything in reverse creation order. A failing step does not
// stop the ones after it, all failures are combined into the returned error.
func (c *Context) Destroy() error {
	if c == nil {
		return nil
	}
	var result error
	c.Queue = nil
	if c.Device != nil {
		if err := c.Device.Destroy(); err != nil {
			result = errors.CombineErrors(result, errors.Wrap(err, "vk.DestroyDevice()"))
		}
		c.Device = nil
	}
	c.Diagnostics.Close()
	c.Diagnostics = nil
	if c.Instance != nil {
		if err := c.Instance.Destroy(); err != nil {
			result = errors.CombineErrors(result, errors.Wrap(err, "vk.DestroyInstance()"))
		}
		c.Instance = nil
	}
	if result != nil && c.log != nil {
		c.log.WithError(result).Warn("teardown finished with errors")
	}
	return result
}

// Window is the part of the windowing collaborator the startup needs.
type Window interface {
	RequiredExtensions() []string
}

func stage(log logrus.FieldLogger, name string, fn func() error) error {
	start := hrtime.Now()
	err := fn()
	entry := log.WithFields(logrus.Fields{
		"stage":   name,
		"elapsed": hrtime.Since(start),
	})
	if err != nil {
		entry.WithError(err).Debug("stage failed")
	} else {
		entry.Debug("stage finished")
	}
	return err
}

// Bootstrap runs the startup sequence: negotiate extensions and layers,
// create the instance, open diagnostics, select a physical device and
// create the logical device. Every step depends on the one before, so
// the first failure ends it, after whatever was created is released.
// window may be nil when running headless.
func Bootstrap(drv device.Driver, window Window, cfg Configuration, log logrus.FieldLogger) (_ *Context, err error) {
	session := uuid.New()
	log = log.WithField("session", session.String())

	ctx := &Context{
		Session: session,
		log:     log,
	}
	defer func() {
		if err != nil {
			log.WithField("kind", Kind(err)).WithError(err).Error("startup failed")
			ctx.Destroy()
		}
	}()

	var windowExtensions []string
	if window != nil {
		windowExtensions = window.RequiredExtensions()
	}

	var negotiation *Negotiation
	if err := stage(log, "negotiate", func() (err error) {
		negotiation, err = Negotiate(drv, windowExtensions, cfg.Diagnostics, log)
		return err
	}); err != nil {
		return nil, err
	}
	ctx.Extensions = negotiation.Extensions
	ctx.Layers = negotiation.Layers

	if err := stage(log, "instance", func() (err error) {
		ctx.Instance, err = BuildInstance(drv, cfg.Application, negotiation, log)
		return err
	}); err != nil {
		return nil, err
	}

	diagnostics := cfg.Diagnostics
	diagnostics.Enabled = diagnostics.Enabled && negotiation.Messenger()
	if err := stage(log, "diagnostics", func() (err error) {
		ctx.Diagnostics, err = OpenDiagnostics(NewResolver(ctx.Instance, log), diagnostics, log)
		return err
	}); err != nil {
		return nil, err
	}

	if err := stage(log, "select", func() (err error) {
		ctx.Selection, err = SelectPhysicalDevice(ctx.Instance, cfg.Selection, log)
		return err
	}); err != nil {
		return nil, err
	}

	if err := stage(log, "device", func() (err error) {
		ctx.Device, ctx.Queue, err = CreateLogicalDevice(ctx.PhysicalDevice(), ctx.Layers, log)
		return err
	}); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"device": ctx.PhysicalDevice().Properties.Name,
		"family": ctx.GraphicsFamily(),
	}).Info("startup complete")
	return ctx, nil
}
