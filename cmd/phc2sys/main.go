/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// phc2sys disciplines a destination clock (CLOCK_REALTIME by default)
// to a source: either a PHC device read back-to-back with the
// destination, or a PPS device providing pulse edge timestamps.
package main

import (
	"flag"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/precisiontime/phc2sys/phc2sys"
	"github.com/precisiontime/phc2sys/servo"
)

func main() {
	cfg := phc2sys.DefaultConfig()

	var configFile string
	var logLevel string

	flag.StringVar(&cfg.Destination, "c", "", "slave clock device to synchronize, default CLOCK_REALTIME")
	flag.StringVar(&cfg.PPSDevice, "d", "", "master device, source of PPS events")
	flag.Int64Var(&cfg.ReadingDelayNS, "r", 0, "reading the PHC device takes this many nanoseconds")
	flag.StringVar(&cfg.Source, "s", "", "set the time from this PHC device")
	flag.Float64Var(&cfg.KP, "P", servo.DefaultKP, "set proportional constant")
	flag.Float64Var(&cfg.KI, "I", servo.DefaultKI, "set integration constant")
	flag.DurationVar(&cfg.Interval, "i", time.Second, "interval between direct clock comparisons")
	flag.IntVar(&cfg.MonitoringPort, "monitoringport", 0, "port to serve JSON monitoring stats on, 0 disables it")
	flag.StringVar(&configFile, "config", "", "path to a YAML config, flags set on the command line take precedence")
	flag.StringVar(&logLevel, "loglevel", "info", "Set a log level. Can be: debug, info, warning, error")

	flag.Parse()

	switch logLevel {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warning":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Fatalf("Unrecognized log level: %v", logLevel)
	}

	if configFile != "" {
		// file values fill in whatever flags did not set explicitly
		flagged := *cfg
		if err := phc2sys.ReadConfig(configFile, cfg); err != nil {
			log.Fatalf("failed to read config: %v", err)
		}
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "c":
				cfg.Destination = flagged.Destination
			case "d":
				cfg.PPSDevice = flagged.PPSDevice
			case "r":
				cfg.ReadingDelayNS = flagged.ReadingDelayNS
			case "s":
				cfg.Source = flagged.Source
			case "P":
				cfg.KP = flagged.KP
			case "I":
				cfg.KI = flagged.KI
			case "i":
				cfg.Interval = flagged.Interval
			case "monitoringport":
				cfg.MonitoringPort = flagged.MonitoringPort
			}
		})
	}

	syncer, err := phc2sys.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	// runs until the process is terminated externally
	syncer.Run()
}
