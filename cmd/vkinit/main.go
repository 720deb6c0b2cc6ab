// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"os"
	"runtime"

	"github.com/devblok/vkinit/core"
	"github.com/devblok/vkinit/device"
	"github.com/devblok/vkinit/window"
	log "github.com/sirupsen/logrus"
)

func init() {
	runtime.LockOSThread()
}

// configure builds the configuration from the environment. envy has
// already read ./.env on init, files are extra dotenv files on top of it.
func configure(files ...string) (core.Configuration, error) {
	cfg := core.DefaultConfiguration()
	if len(files) > 0 {
		if err := core.LoadEnvironmentFiles(files...); err != nil {
			return cfg, err
		}
	}
	return cfg, core.LoadEnvironment(&cfg)
}

func run() error {
	cfg, err := configure(os.Args[1:]...)
	if err != nil {
		return err
	}

	win, err := window.New(cfg.Window)
	if err != nil {
		return err
	}
	defer win.Destroy()

	drv, err := device.NewVulkanDriver(win.ProcAddr())
	if err != nil {
		return err
	}

	ctx, err := core.Bootstrap(drv, win, cfg, log.StandardLogger())
	if err != nil {
		return err
	}
	if ctx.Diagnostics != nil {
		log.Info("validation messages are logged")
	}

	time := core.NewTime(cfg.Time)
	defer time.Stop()
	for !win.ShouldClose() {
		<-time.PollTicker().C
		win.Poll()
	}
	log.Debug("event loop exited")

	return ctx.Destroy()
}

func main() {
	if err := run(); err != nil {
		log.WithField("kind", core.Kind(err)).Errorf("%+v", err)
		os.Exit(1)
	}
}
