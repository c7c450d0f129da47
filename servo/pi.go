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

const (
	// DefaultKP is the default proportional gain
	DefaultKP = 0.7
	// DefaultKI is the default integral gain
	DefaultKI = 0.3
	// DefaultMaxFreqPPB bounds the frequency correction the servo may ask for
	DefaultMaxFreqPPB = 512000.0

	nsPerSec = int64(1000000000)
)

// PiServo is a proportional-integral clock servo with explicit
// convergence states. It is pure computation: Sample returns the
// frequency correction in ppb and the caller actuates the clock.
//
// The MeasureDrift stage assumes samples arrive at a 1 Hz cadence;
// feeding it at any other rate silently skews the initial drift
// estimate. The loop driving the servo must hold that cadence.
type PiServo struct {
	state  State
	lastTS uint64
	drift  float64
	kp     float64
	ki     float64

	maxFreq float64
}

// NewPiServo creates a servo with the given PI gains
func NewPiServo(kp, ki float64) *PiServo {
	return &PiServo{
		kp:      kp,
		ki:      ki,
		maxFreq: DefaultMaxFreqPPB,
	}
}

// SetMaxFreq is to adjust the frequency range supported by the clock
func (s *PiServo) SetMaxFreq(freq float64) {
	s.maxFreq = freq
}

// State returns the state the next sample will be processed in
func (s *PiServo) State() State {
	return s.state
}

// Drift returns the current drift estimate in ppb
func (s *PiServo) Drift() float64 {
	return s.drift
}

// Sample consumes one (offset, timestamp) measurement and advances the
// state machine. It returns the frequency correction in ppb together
// with the state the sample was processed in. The caller applies the
// negated correction via a frequency trim, except in StateStepCorrect
// where it steps the clock by the negated sample offset, and in
// StateSettling where the sample is discarded.
func (s *PiServo) Sample(offset int64, ts uint64) (float64, State) {
	var ppb float64
	state := s.state

	switch s.state {
	case StateInit:
		ppb = 0.0
		s.state = StateSettling
	case StateSettling:
		// discard the sample, only its timestamp is retained below
		s.state = StateMeasureDrift
	case StateMeasureDrift:
		delta := int64(ts - s.lastTS)
		offset = delta - nsPerSec
		s.drift = float64(offset)
		ppb = float64(offset)
		s.state = StateStepCorrect
	case StateStepCorrect:
		s.state = StateTrack
	case StateTrack:
		kiTerm := s.ki * float64(offset)
		ppb = s.kp*float64(offset) + s.drift + kiTerm
		if ppb < -s.maxFreq {
			ppb = -s.maxFreq
		} else if ppb > s.maxFreq {
			ppb = s.maxFreq
		} else {
			// the integral only accumulates while the output is unsaturated
			s.drift += kiTerm
		}
	}
	s.lastTS = ts

	return ppb, state
}
