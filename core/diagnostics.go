// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/vkinit/device"
	"github.com/sirupsen/logrus"
)

// Diagnostics is a live diagnostic channel. Its messenger has to be
// closed before the instance it was created from is destroyed.
type Diagnostics struct {
	messenger device.Messenger
	destroy   device.DestroyMessengerFunc
	log       logrus.FieldLogger
}

// OpenDiagnostics creates the debug messenger through the resolver.
// Returns nil without error when diagnostics are disabled, or when the entry
// points are missing and cfg.RequireMessenger is false.
func OpenDiagnostics(r *Resolver, cfg DiagnosticsConfiguration, log logrus.FieldLogger) (*Diagnostics, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	createProc := Resolve[device.CreateMessengerFunc](r, device.ProcCreateMessenger)
	destroyProc := Resolve[device.DestroyMessengerFunc](r, device.ProcDestroyMessenger)
	if !createProc.Available() || !destroyProc.Available() {
		if !cfg.RequireMessenger {
			log.WithField("extension", device.DebugExtensionName).Warn("debug messenger unavailable, continuing without diagnostics")
			return nil, nil
		}
	}

	create, err := createProc.Require(device.ProcCreateMessenger)
	if err != nil {
		return nil, err
	}
	destroy, err := destroyProc.Require(device.ProcDestroyMessenger)
	if err != nil {
		return nil, err
	}

	info := &device.MessengerCreateInfo{
		Severities: cfg.Severities,
		Categories: cfg.Categories,
		Callback:   LogMessages(log),
	}
	if info.Severities == 0 {
		info.Severities = device.SeverityAll
	}
	if info.Categories == 0 {
		info.Categories = device.CategoryAll
	}

	messenger, err := create(info)
	if err != nil {
		return nil, creationFailure(err, "failed to set up debug messenger")
	}
	log.WithFields(logrus.Fields{
		"severities": info.Severities.String(),
		"categories": info.Categories.String(),
	}).Info("debug messenger enabled")

	return &Diagnostics{
		messenger: messenger,
		destroy:   destroy,
		log:       log,
	}, nil
}

// Close destroys the messenger. Failure is logged and swallowed,
// there is nothing a caller could do about it.
func (d *Diagnostics) Close() {
	if d == nil || d.messenger == nil {
		return
	}
	if err := d.destroy(d.messenger); err != nil {
		d.log.WithError(err).Warn("debug messenger destruction failed")
	}
	d.messenger = nil
}

// LogMessages returns a callback forwarding driver messages to log at the
// level matching their severity.
func LogMessages(log logrus.FieldLogger) device.MessageCallback {
	return func(msg device.Message) {
		entry := log.WithFields(logrus.Fields{
			"category": msg.Category.String(),
			"layer":    msg.Layer,
		})
		switch {
		case msg.Severity&device.SeverityError != 0:
			entry.Error("Validation layer: " + msg.Text)
		case msg.Severity&device.SeverityWarning != 0:
			entry.Warn("Validation layer: " + msg.Text)
		default:
			entry.Debug("Validation layer: " + msg.Text)
		}
	}
}
