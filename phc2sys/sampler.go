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

	"github.com/precisiontime/phc2sys/clock"
	"github.com/precisiontime/phc2sys/phc"
	"github.com/precisiontime/phc2sys/pps"
)

const nsPerSec = int64(time.Second)

// pulseFetchTimeout bounds the wait for the next PPS edge
const pulseFetchTimeout = 10 * time.Second

// Sample is one offset measurement together with the destination
// timestamp it was taken at
type Sample struct {
	Offset int64  // destination minus source, ns
	TS     uint64 // ns
}

// Sampler produces one offset sample per loop iteration. A (nil, nil)
// return means no sample is available this round: the caller skips the
// iteration without advancing the servo.
type Sampler interface {
	Sample() (*Sample, error)
}

type timeReader func(clockid int32) (time.Time, error)

// PHCSampler measures the offset between two clocks with back-to-back reads
type PHCSampler struct {
	src          int32
	dst          int32
	readingDelay int64

	read timeReader
}

// NewPHCSampler creates a direct-compare sampler. readingDelay
// compensates for the latency between the two sequential reads, in ns.
func NewPHCSampler(src, dst int32, readingDelay int64) *PHCSampler {
	return &PHCSampler{src: src, dst: dst, readingDelay: readingDelay, read: clock.Time}
}

// Sample reads both clocks and returns their difference. An invalid
// source clockid yields no sample at all.
func (s *PHCSampler) Sample() (*Sample, error) {
	if s.src == phc.ClockInvalid {
		return nil, nil
	}
	// source goes first so the sequential-read skew leans one way only
	srcTime, err := s.read(s.src)
	if err != nil {
		return nil, fmt.Errorf("reading source clock: %w", err)
	}
	dstTime, err := s.read(s.dst)
	if err != nil {
		return nil, fmt.Errorf("reading destination clock: %w", err)
	}
	offset := (dstTime.Unix()-srcTime.Unix())*nsPerSec +
		int64(dstTime.Nanosecond()-srcTime.Nanosecond()) - s.readingDelay
	ts := uint64(dstTime.Unix())*uint64(nsPerSec) + uint64(dstTime.Nanosecond())
	return &Sample{Offset: offset, TS: ts}, nil
}

type edgeFetcher interface {
	Fetch(timeout time.Duration) (sec int64, nsec int32, err error)
}

// PPSSampler derives the sub-second phase error of the destination
// clock from PPS edge timestamps
type PPSSampler struct {
	dev edgeFetcher
}

// NewPPSSampler creates a pulse-edge sampler over an open PPS device
func NewPPSSampler(dev *pps.Device) *PPSSampler {
	return &PPSSampler{dev: dev}
}

// Sample waits for the next pulse edge, up to pulseFetchTimeout
func (s *PPSSampler) Sample() (*Sample, error) {
	sec, nsec, err := s.dev.Fetch(pulseFetchTimeout)
	if err != nil {
		return nil, err
	}
	ts := uint64(sec)*uint64(nsPerSec) + uint64(nsec)
	return &Sample{Offset: pulseOffset(ts), TS: ts}, nil
}

// pulseOffset wraps the sub-second part of an edge timestamp to the
// nearest representation, so the result is in (-500ms, 500ms]
func pulseOffset(ts uint64) int64 {
	offset := int64(ts % uint64(nsPerSec))
	if offset > nsPerSec/2 {
		offset -= nsPerSec
	}
	return offset
}
