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

package phc2sys

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/precisiontime/phc2sys/clock"
)

// Clock is the iface for clock device controls
type Clock interface {
	Time() (time.Time, error)
	SetTime(time.Time) error
	AdjFreqPPB(freq float64) error
	Step(step time.Duration) error
	SetSync() error
}

// SysClock drives one clockid through clock_adjtime, be it
// CLOCK_REALTIME or a PHC device clock
type SysClock struct {
	id   int32
	name string
}

// NewSysClock wraps a clockid for use as the destination clock
func NewSysClock(id int32, name string) *SysClock {
	return &SysClock{id: id, name: name}
}

// Time reads absolute time of the clock
func (c *SysClock) Time() (time.Time, error) {
	return clock.Time(c.id)
}

// SetTime sets absolute time of the clock
func (c *SysClock) SetTime(t time.Time) error {
	return clock.SetTime(c.id, t)
}

// AdjFreqPPB adjusts clock frequency
func (c *SysClock) AdjFreqPPB(freq float64) error {
	state, err := clock.AdjFreqPPB(c.id, freq)
	if err != nil {
		return fmt.Errorf("failed to adjust %s: %w", c.name, err)
	}
	if state != unix.TIME_OK {
		log.Debugf("clock %s state %d is not TIME_OK after adjusting frequency", c.name, state)
	}
	return nil
}

// Step jumps time on the clock
func (c *SysClock) Step(step time.Duration) error {
	state, err := clock.Step(c.id, step)
	if err != nil {
		return fmt.Errorf("failed to step %s: %w", c.name, err)
	}
	if state != unix.TIME_OK {
		log.Debugf("clock %s state %d is not TIME_OK after stepping", c.name, state)
	}
	return nil
}

// SetSync sets clock status to TIME_OK. Only the system realtime clock
// carries a kernel sync status, for PHC clockids this is a no-op.
func (c *SysClock) SetSync() error {
	if c.id != unix.CLOCK_REALTIME {
		return nil
	}
	return clock.SetSync(c.id)
}
