// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDiagnosticsFixedAtBuild(t *testing.T) {
	c := qt.New(t)
	c.Assert(flag.Lookup("debug"), qt.IsNil)
	flag.VisitAll(func(f *flag.Flag) {
		c.Assert(strings.Contains(f.Usage, "validation"), qt.IsFalse, qt.Commentf("-%s", f.Name))
	})
}
