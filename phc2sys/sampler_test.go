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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/precisiontime/phc2sys/phc"
)

func TestPHCSamplerInvalidSource(t *testing.T) {
	var reads []int32
	s := NewPHCSampler(phc.ClockInvalid, 0, 0)
	s.read = func(clockid int32) (time.Time, error) {
		reads = append(reads, clockid)
		return time.Time{}, nil
	}

	sample, err := s.Sample()
	require.NoError(t, err)
	require.Nil(t, sample)
	// neither clock may be touched when the source is invalid
	require.Empty(t, reads)
}

func TestPHCSamplerOffset(t *testing.T) {
	src := int32(-29)
	dst := int32(-37)
	var reads []int32
	s := NewPHCSampler(src, dst, 100)
	s.read = func(clockid int32) (time.Time, error) {
		reads = append(reads, clockid)
		switch clockid {
		case src:
			return time.Unix(100, 200), nil
		case dst:
			return time.Unix(101, 700), nil
		}
		return time.Time{}, fmt.Errorf("unexpected clockid %d", clockid)
	}

	sample, err := s.Sample()
	require.NoError(t, err)
	require.NotNil(t, sample)
	// (101-100)*1e9 + (700-200) - 100
	require.Equal(t, int64(1000000400), sample.Offset)
	require.Equal(t, uint64(101000000700), sample.TS)
	// source clock is read first
	require.Equal(t, []int32{src, dst}, reads)
}

func TestPHCSamplerNegativeOffset(t *testing.T) {
	src := int32(-29)
	dst := int32(-37)
	s := NewPHCSampler(src, dst, 0)
	s.read = func(clockid int32) (time.Time, error) {
		if clockid == src {
			return time.Unix(100, 900), nil
		}
		return time.Unix(100, 400), nil
	}

	sample, err := s.Sample()
	require.NoError(t, err)
	require.Equal(t, int64(-500), sample.Offset)
	require.Equal(t, uint64(100000000400), sample.TS)
}

func TestPHCSamplerReadError(t *testing.T) {
	src := int32(-29)
	s := NewPHCSampler(src, 0, 0)
	s.read = func(_ int32) (time.Time, error) {
		return time.Time{}, fmt.Errorf("device gone")
	}

	sample, err := s.Sample()
	require.Error(t, err)
	require.Nil(t, sample)
}

func TestPulseOffset(t *testing.T) {
	testCases := []struct {
		ts   uint64
		want int64
	}{
		{ts: 0, want: 0},
		{ts: 10000000000, want: 0},
		// the half-second boundary itself does not wrap
		{ts: 10500000000, want: 500000000},
		{ts: 10500000001, want: -499999999},
		{ts: 10600000000, want: -400000000},
		{ts: 10999999999, want: -1},
		{ts: 10499999999, want: 499999999},
		{ts: 10000000001, want: 1},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.want, pulseOffset(tc.ts), "pulseOffset(%d)", tc.ts)
	}
}

type fakeEdgeFetcher struct {
	sec      int64
	nsec     int32
	err      error
	timeouts []time.Duration
}

func (f *fakeEdgeFetcher) Fetch(timeout time.Duration) (int64, int32, error) {
	f.timeouts = append(f.timeouts, timeout)
	return f.sec, f.nsec, f.err
}

func TestPPSSampler(t *testing.T) {
	dev := &fakeEdgeFetcher{sec: 10, nsec: 600000000}
	s := &PPSSampler{dev: dev}

	sample, err := s.Sample()
	require.NoError(t, err)
	require.Equal(t, uint64(10600000000), sample.TS)
	require.Equal(t, int64(-400000000), sample.Offset)
	require.Equal(t, []time.Duration{pulseFetchTimeout}, dev.timeouts)
}

func TestPPSSamplerFetchError(t *testing.T) {
	dev := &fakeEdgeFetcher{err: fmt.Errorf("timeout")}
	s := &PPSSampler{dev: dev}

	sample, err := s.Sample()
	require.Error(t, err)
	require.Nil(t, sample)
}
