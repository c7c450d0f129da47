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

package servo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPiServoStateSequence(t *testing.T) {
	pi := NewPiServo(DefaultKP, DefaultKI)

	// the progression is value-independent
	want := []State{StateInit, StateSettling, StateMeasureDrift, StateStepCorrect, StateTrack, StateTrack, StateTrack}
	ts := uint64(1674148530671467104)
	for i, expected := range want {
		_, state := pi.Sample(int64(i*1000-500), ts)
		require.Equal(t, expected, state, "state of sample %d", i)
		ts += 1000000000
	}
	require.Equal(t, StateTrack, pi.State())
}

func TestPiServoMeasureDrift(t *testing.T) {
	pi := NewPiServo(DefaultKP, DefaultKI)

	_, state := pi.Sample(0, 0)
	require.Equal(t, StateInit, state)
	_, state = pi.Sample(0, 1000000000)
	require.Equal(t, StateSettling, state)

	// delta = 1000500000, so the measured frequency error is 500000 ppb
	ppb, state := pi.Sample(0, 2000500000)
	require.Equal(t, StateMeasureDrift, state)
	require.InEpsilon(t, 500000.0, ppb, 0.00001)
	require.InEpsilon(t, 500000.0, pi.Drift(), 0.00001)
}

// runs a fresh servo up to StateTrack with the given drift estimate
func trackingServo(t *testing.T, kp, ki, drift float64) *PiServo {
	t.Helper()
	pi := NewPiServo(kp, ki)
	ts := uint64(5000000000)
	pi.Sample(0, ts)
	ts += 1000000000
	pi.Sample(0, ts)
	ts += uint64(1000000000 + int64(drift))
	_, state := pi.Sample(0, ts)
	require.Equal(t, StateMeasureDrift, state)
	require.InDelta(t, drift, pi.Drift(), 0.00001)
	_, state = pi.Sample(0, ts+1000000000)
	require.Equal(t, StateStepCorrect, state)
	return pi
}

func TestPiServoTrack(t *testing.T) {
	pi := trackingServo(t, 0.7, 0.3, -100.0)

	// kiTerm = 15, ppb = 35 - 100 + 15 = -50, within bounds
	ppb, state := pi.Sample(50, 9000000000)
	require.Equal(t, StateTrack, state)
	require.InEpsilon(t, -50.0, ppb, 0.00001)
	require.InEpsilon(t, -85.0, pi.Drift(), 0.00001)

	// integral keeps accumulating while unsaturated
	ppb, state = pi.Sample(10, 10000000000)
	require.Equal(t, StateTrack, state)
	require.InEpsilon(t, 0.7*10-85.0+3.0, ppb, 0.00001)
	require.InEpsilon(t, -82.0, pi.Drift(), 0.00001)
}

func TestPiServoTrackClampPositive(t *testing.T) {
	pi := trackingServo(t, 0.7, 0.3, 600000.0)

	// raw output 600000 exceeds the bound: clamp, no integral update
	ppb, state := pi.Sample(0, 9000000000)
	require.Equal(t, StateTrack, state)
	require.InEpsilon(t, DefaultMaxFreqPPB, ppb, 0.00001)
	require.InEpsilon(t, 600000.0, pi.Drift(), 0.00001)
}

func TestPiServoTrackClampNegative(t *testing.T) {
	pi := trackingServo(t, 0.7, 0.3, 0.0)
	require.InDelta(t, 0.0, pi.Drift(), 0.00001)

	// kiTerm = -300000, raw ppb = -700000 - 300000 = -1000000
	ppb, state := pi.Sample(-1000000, 9000000000)
	require.Equal(t, StateTrack, state)
	require.InEpsilon(t, -DefaultMaxFreqPPB, ppb, 0.00001)
	require.InDelta(t, 0.0, pi.Drift(), 0.00001)
}

func TestPiServoSetMaxFreq(t *testing.T) {
	pi := trackingServo(t, 0.7, 0.3, 0.0)
	pi.SetMaxFreq(100.0)

	ppb, state := pi.Sample(1000, 9000000000)
	require.Equal(t, StateTrack, state)
	require.InEpsilon(t, 100.0, ppb, 0.00001)
	require.InDelta(t, 0.0, pi.Drift(), 0.00001)
}
