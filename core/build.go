// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build !release

package core

// DiagnosticsEnabled requests validation layers and the debug messenger.
// Build with -tags release to turn it off.
const DiagnosticsEnabled = true
