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

// Package phc2sys synchronizes a destination clock to a source, either
// by comparing two clocks directly or by tracking PPS pulse edges.
package phc2sys

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/precisiontime/phc2sys/clock"
	"github.com/precisiontime/phc2sys/phc"
	"github.com/precisiontime/phc2sys/pps"
	"github.com/precisiontime/phc2sys/servo"
)

// Syncer owns the servo, the sampler and the destination clock, and
// drives the synchronization loop. Everything here runs on a single
// goroutine; only the stats endpoint is served concurrently.
type Syncer struct {
	cfg     *Config
	pi      *servo.PiServo
	sampler Sampler
	src     int32
	dst     Clock
	stats   *JSONStats
	paced   bool // the bounded PPS fetch paces the loop instead of a sleep
}

// New opens the configured clocks and devices and wires up a Syncer.
// An unusable destination or a completely missing source of samples is
// a configuration error; a source clock that fails to open degrades to
// "no sample" rounds instead.
func New(cfg *Config) (*Syncer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dstID := int32(unix.CLOCK_REALTIME)
	dstName := "CLOCK_REALTIME"
	if cfg.Destination != "" {
		dstID = phc.OpenClock(cfg.Destination)
		dstName = cfg.Destination
		if dstID == phc.ClockInvalid {
			return nil, fmt.Errorf("destination clock %s is unusable", cfg.Destination)
		}
	}

	srcID := phc.ClockInvalid
	if cfg.Source != "" {
		// stays ClockInvalid on failure, sampling then yields no samples
		srcID = phc.OpenClock(cfg.Source)
	}

	s := &Syncer{
		cfg:   cfg,
		pi:    servo.NewPiServo(cfg.KP, cfg.KI),
		src:   srcID,
		dst:   NewSysClock(dstID, dstName),
		stats: NewJSONStats(),
	}

	if cfg.PPSDevice != "" {
		dev, err := pps.Open(cfg.PPSDevice)
		if err != nil {
			return nil, err
		}
		s.sampler = NewPPSSampler(dev)
		s.paced = true
	} else {
		s.sampler = NewPHCSampler(srcID, dstID, cfg.ReadingDelayNS)
	}

	return s, nil
}

// Run aligns the destination to the source once, then loops forever.
// Nothing terminates the loop from the inside: transient failures are
// logged and the next iteration is the retry.
func (s *Syncer) Run() {
	s.alignOnce()
	if s.cfg.MonitoringPort != 0 {
		go s.stats.Start(s.cfg.MonitoringPort)
	}
	for {
		if !s.paced {
			time.Sleep(s.cfg.Interval)
		}
		s.tick()
	}
}

// alignOnce sets the destination clock from the source clock before
// the servo takes over, so the first step correction stays small
func (s *Syncer) alignOnce() {
	if s.src == phc.ClockInvalid {
		return
	}
	now, err := clock.Time(s.src)
	if err != nil {
		log.Errorf("failed to read source clock for initial alignment: %v", err)
		return
	}
	if err := s.dst.SetTime(now); err != nil {
		log.Errorf("failed to set destination clock: %v", err)
	}
}

// tick runs a single iteration: sample, feed the servo, actuate
func (s *Syncer) tick() {
	sample, err := s.sampler.Sample()
	if err != nil {
		log.Errorf("failed to read offset sample: %v", err)
		s.stats.IncSampleErrors()
		return
	}
	if sample == nil {
		// no usable source right now, the next round is the retry
		s.stats.IncSkippedSamples()
		return
	}

	freqAdj, state := s.pi.Sample(sample.Offset, sample.TS)
	log.Infof("%s offset %9d ts %d.%09d drift %+.2f",
		state, sample.Offset, sample.TS/uint64(nsPerSec), sample.TS%uint64(nsPerSec), s.pi.Drift())

	switch state {
	case servo.StateSettling:
		// nothing to actuate, the sample only seeded the timestamp delta
	case servo.StateStepCorrect:
		if err := s.dst.Step(-time.Duration(sample.Offset)); err != nil {
			log.Errorf("failed to step clock by %v: %v", -sample.Offset, err)
			s.stats.IncActuationErrors()
		} else {
			s.stats.IncSteps()
		}
	default:
		if err := s.dst.AdjFreqPPB(-freqAdj); err != nil {
			log.Errorf("failed to adjust freq to %v: %v", -freqAdj, err)
			s.stats.IncActuationErrors()
		} else if err := s.dst.SetSync(); err != nil {
			log.Errorf("failed to set clock sync state: %v", err)
		}
	}

	s.stats.Update(state, sample.Offset, s.pi.Drift(), freqAdj)
}
