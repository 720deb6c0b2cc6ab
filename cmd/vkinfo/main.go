// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command vkinfo runs device negotiation without a window and prints
// what was chosen. It can record what the driver reports into a
// snapshot archive, and replay such a snapshot instead of a real driver.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/capture"
	"github.com/devblok/vkinit/core"
	"github.com/devblok/vkinit/device"
	log "github.com/sirupsen/logrus"
)

var (
	captureFile = flag.String("capture", "", "append a snapshot of this machine to `archive`")
	replayFile  = flag.String("replay", "", "negotiate against a snapshot from `archive` instead of the driver")
	entry       = flag.String("entry", "", "snapshot `id` to replay, latest when empty")
	label       = flag.String("label", "", "label stored with a captured snapshot")
	list        = flag.Bool("list", false, "list snapshots in the replay archive and exit")
	verbose     = flag.Bool("v", false, "log every startup stage")
)

type report struct {
	Session    string
	Extensions []string
	Layers     []string
	Selection  *core.SelectionReport
}

func listArchive() error {
	a, err := capture.OpenFile(*replayFile)
	if err != nil {
		return err
	}
	defer a.Close()
	for _, e := range a.Entries() {
		fmt.Printf("%s\t%d\t%s\n", e.ID, e.Taken, e.Label)
	}
	return nil
}

func replayDriver() (device.Driver, error) {
	a, err := capture.OpenFile(*replayFile)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	var s *capture.Snapshot
	if *entry != "" {
		s, err = a.Load(*entry)
	} else {
		s, err = a.Latest()
	}
	if err != nil {
		return nil, err
	}
	log.WithField("snapshot", s.ID).Info("replaying")
	return capture.NewReplayDriver(s), nil
}

// takeSnapshot records drv through a bare instance, so machines
// without a suitable device can still be captured.
func takeSnapshot(drv device.Driver, cfg core.Configuration) error {
	n, err := core.Negotiate(drv, nil, core.DiagnosticsConfiguration{}, log.StandardLogger())
	if err != nil {
		return err
	}
	inst, err := core.BuildInstance(drv, cfg.Application, n, log.StandardLogger())
	if err != nil {
		return err
	}
	s, err := capture.Take(drv, inst, *label)
	if err != nil {
		inst.Destroy()
		return err
	}
	if err := inst.Destroy(); err != nil {
		return errors.Wrap(err, "vk.DestroyInstance()")
	}

	host, _ := os.Hostname()
	if err := capture.Append(*captureFile, host, s); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"snapshot": s.ID,
		"archive":  *captureFile,
		"devices":  len(s.Devices),
	}).Info("captured")
	return nil
}

func run() error {
	if *list {
		if *replayFile == "" {
			return errors.New("-list needs -replay")
		}
		return listArchive()
	}

	cfg := core.DefaultConfiguration()
	if err := core.LoadEnvironment(&cfg); err != nil {
		return err
	}

	var (
		drv device.Driver
		err error
	)
	if *replayFile != "" {
		drv, err = replayDriver()
	} else {
		drv, err = device.NewVulkanDriver(nil)
	}
	if err != nil {
		return err
	}

	if *captureFile != "" {
		if err := takeSnapshot(drv, cfg); err != nil {
			return err
		}
	}

	ctx, err := core.Bootstrap(drv, nil, cfg, log.StandardLogger())
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	out, err := json.MarshalIndent(report{
		Session:    ctx.Session.String(),
		Extensions: ctx.Extensions,
		Layers:     ctx.Layers,
		Selection:  ctx.Selection,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", out)
	return nil
}

func main() {
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.SetOutput(os.Stderr)

	if err := run(); err != nil {
		log.WithField("kind", core.Kind(err)).Errorf("%+v", err)
		os.Exit(1)
	}
}
