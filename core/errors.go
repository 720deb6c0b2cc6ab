// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "github.com/cockroachdb/errors"

// Error kinds. Every fatal startup error carries exactly one
// of these, test for them with errors.Is.
var (
	// ErrConfiguration is a requested layer or extension being unavailable,
	// or a configuration value that makes no sense.
	ErrConfiguration = errors.New("configuration error")

	// ErrResourceExhausted means there is no device to run on.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrCapabilityAbsent means an extension entry point could not be resolved.
	ErrCapabilityAbsent = errors.New("capability absent")

	// ErrCreationFailure is any native create call failing.
	ErrCreationFailure = errors.New("creation failure")
)

// ErrEnumerationUnstable is returned when the driver reports more items
// on the fill call than it did on the count call.
var ErrEnumerationUnstable = errors.New("enumeration changed between count and fill")

var kinds = []struct {
	err  error
	name string
}{
	{ErrConfiguration, "ConfigurationError"},
	{ErrResourceExhausted, "ResourceExhaustedError"},
	{ErrCapabilityAbsent, "CapabilityAbsentError"},
	{ErrCreationFailure, "CreationFailure"},
}

// Kind names the kind of err, or returns "UnknownError".
func Kind(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		for _, k := range kinds {
			if ke.kind == k.err {
				return k.name
			}
		}
	}
	return "UnknownError"
}

// kindError attaches a kind to cause without changing its message.
// Is answers for the kind, Unwrap continues with the cause, so both
// kind and cause are found by errors.Is.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string { return e.cause.Error() }

func (e *kindError) Unwrap() error { return e.cause }

func (e *kindError) Is(target error) bool { return target == e.kind }

func withKind(err, kind error) error {
	return &kindError{kind: kind, cause: err}
}

func configurationErrorf(format string, args ...interface{}) error {
	return withKind(errors.Newf(format, args...), ErrConfiguration)
}

func resourceExhaustedf(format string, args ...interface{}) error {
	return withKind(errors.Newf(format, args...), ErrResourceExhausted)
}

func capabilityAbsentf(format string, args ...interface{}) error {
	return withKind(errors.Newf(format, args...), ErrCapabilityAbsent)
}

func creationFailure(err error, msg string) error {
	return withKind(errors.Wrap(err, msg), ErrCreationFailure)
}
