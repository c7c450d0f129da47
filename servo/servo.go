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

// State describes which stage of convergence the servo is in
type State uint8

// The servo progresses linearly through these states and then stays
// in StateTrack for the rest of its life
const (
	// StateInit resets the destination frequency correction to zero
	StateInit State = iota
	// StateSettling discards one sample so the next timestamp delta is clean
	StateSettling
	// StateMeasureDrift turns the timestamp delta into an initial frequency error estimate
	StateMeasureDrift
	// StateStepCorrect removes the accumulated offset with a single clock step
	StateStepCorrect
	// StateTrack is the steady state PI controller
	StateTrack
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateSettling:
		return "SETTLING"
	case StateMeasureDrift:
		return "MEASURE_DRIFT"
	case StateStepCorrect:
		return "STEP_CORRECT"
	case StateTrack:
		return "TRACK"
	}
	return "UNSUPPORTED"
}
