// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import "strings"

// Severity of a driver message
type Severity uint32

// Message severities
const (
	SeverityVerbose Severity = 1 << iota
	SeverityWarning
	SeverityError

	SeverityAll = SeverityVerbose | SeverityWarning | SeverityError
)

func (s Severity) String() string {
	var parts []string
	if s&SeverityVerbose != 0 {
		parts = append(parts, "verbose")
	}
	if s&SeverityWarning != 0 {
		parts = append(parts, "warning")
	}
	if s&SeverityError != 0 {
		parts = append(parts, "error")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Category of a driver message
type Category uint32

// Message categories
const (
	CategoryGeneral Category = 1 << iota
	CategoryValidation
	CategoryPerformance

	CategoryAll = CategoryGeneral | CategoryValidation | CategoryPerformance
)

func (c Category) String() string {
	var parts []string
	if c&CategoryGeneral != 0 {
		parts = append(parts, "general")
	}
	if c&CategoryValidation != 0 {
		parts = append(parts, "validation")
	}
	if c&CategoryPerformance != 0 {
		parts = append(parts, "performance")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Message is a single diagnostic forwarded by the driver.
type Message struct {
	Severity Severity
	Category Category
	Layer    string
	Text     string
}

// MessageCallback receives driver messages. It cannot abort the call
// that produced the message, there is nothing to return.
type MessageCallback func(Message)

// MessengerCreateInfo configures a diagnostic messenger.
type MessengerCreateInfo struct {
	Severities Severity
	Categories Category
	Callback   MessageCallback
}

// Accepts tells whether a message passes both filters.
func (m *MessengerCreateInfo) Accepts(msg Message) bool {
	return m.Severities&msg.Severity != 0 && m.Categories&msg.Category != 0
}

// Messenger is an opaque handle to a live diagnostic messenger
type Messenger interface {
	Inner() interface{}
}

// CreateMessengerFunc is the callable found under ProcCreateMessenger.
type CreateMessengerFunc func(info *MessengerCreateInfo) (Messenger, error)

// DestroyMessengerFunc is the callable found under ProcDestroyMessenger.
type DestroyMessengerFunc func(m Messenger) error
