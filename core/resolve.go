// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"reflect"

	"github.com/devblok/vkinit/device"
	"github.com/sirupsen/logrus"
)

// Proc is an optional entry point, either present with a callable or absent.
type Proc[F any] struct {
	fn      F
	present bool
}

// Present wraps a resolved callable
func Present[F any](fn F) Proc[F] {
	return Proc[F]{fn: fn, present: true}
}

// Absent is an entry point that could not be resolved
func Absent[F any]() Proc[F] {
	return Proc[F]{}
}

// Get returns the callable and true, or the zero value and false.
// Never call the zero value.
func (p Proc[F]) Get() (F, bool) {
	return p.fn, p.present
}

// Available tells whether the entry point resolved
func (p Proc[F]) Available() bool {
	return p.present
}

// Require returns the callable, or a capability absent error naming it.
func (p Proc[F]) Require(name string) (F, error) {
	if !p.present {
		var zero F
		return zero, capabilityAbsentf("VK_ERROR_EXTENSION_NOT_PRESENT: %s", name)
	}
	return p.fn, nil
}

// Resolver looks up extension entry points of one instance.
// Lookups are done once per name and cached.
type Resolver struct {
	instance device.Instance
	cache    map[string]interface{}
	log      logrus.FieldLogger
}

// NewResolver creates a resolver scoped to instance
func NewResolver(instance device.Instance, log logrus.FieldLogger) *Resolver {
	return &Resolver{
		instance: instance,
		cache:    make(map[string]interface{}),
		log:      log,
	}
}

func (r *Resolver) lookup(name string) interface{} {
	if proc, ok := r.cache[name]; ok {
		return proc
	}
	proc, ok := r.instance.ProcAddr(name)
	if !ok {
		proc = nil
	} else if v := reflect.ValueOf(proc); !v.IsValid() || (v.Kind() == reflect.Func && v.IsNil()) {
		proc = nil
	}
	r.cache[name] = proc
	return proc
}

// Resolve looks up name and returns it as F. A name that does not
// resolve, or resolves to something other than F, is absent.
func Resolve[F any](r *Resolver, name string) Proc[F] {
	proc := r.lookup(name)
	if proc == nil {
		r.log.WithField("proc", name).Debug("entry point not found")
		return Absent[F]()
	}
	fn, ok := proc.(F)
	if !ok {
		r.log.WithFields(logrus.Fields{
			"proc": name,
			"have": fmt.Sprintf("%T", proc),
			"want": fmt.Sprintf("%T", fn),
		}).Warn("entry point has an unexpected signature")
		return Absent[F]()
	}
	return Present(fn)
}
