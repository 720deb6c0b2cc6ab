// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core negotiates what the application will run on: which extensions
// and validation layers to request, which GPU to use and which queue family
// on it, and brings up the instance, logical device and queue.
//
// Everything runs synchronously on the calling goroutine, in a fixed order,
// with every step depending on the handles the previous one created.
// Bootstrap strings the steps together and returns a Context owning all
// of them, the individual steps are exported for tools that need only part
// of the sequence.
package core
