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
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/precisiontime/phc2sys/servo"
)

// Counters is a snapshot of the loop statistics we export via JSON
type Counters struct {
	State           string  `json:"state"`
	LastOffsetNS    int64   `json:"last_offset_ns"`
	DriftPPB        float64 `json:"drift_ppb"`
	LastFreqPPB     float64 `json:"last_freq_ppb"`
	Samples         int64   `json:"samples"`
	SkippedSamples  int64   `json:"skipped_samples"`
	SampleErrors    int64   `json:"sample_errors"`
	ActuationErrors int64   `json:"actuation_errors"`
	Steps           int64   `json:"steps"`
}

// JSONStats is what we want to report as stats via http
type JSONStats struct {
	mu       sync.RWMutex
	counters Counters
}

// NewJSONStats returns a new JSONStats
func NewJSONStats() *JSONStats {
	return &JSONStats{}
}

// Update records the outcome of one servo iteration
func (s *JSONStats) Update(state servo.State, offset int64, drift, freq float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.State = state.String()
	s.counters.LastOffsetNS = offset
	s.counters.DriftPPB = drift
	s.counters.LastFreqPPB = freq
	s.counters.Samples++
}

// IncSkippedSamples counts rounds where no sample was available
func (s *JSONStats) IncSkippedSamples() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.SkippedSamples++
}

// IncSampleErrors counts failed sample reads
func (s *JSONStats) IncSampleErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.SampleErrors++
}

// IncActuationErrors counts failed clock adjustments
func (s *JSONStats) IncActuationErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.ActuationErrors++
}

// IncSteps counts discontinuous clock corrections
func (s *JSONStats) IncSteps() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Steps++
}

// Snapshot returns a copy of the current counters
func (s *JSONStats) Snapshot() Counters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters
}

// Start runs the http server reporting the stats
func (s *JSONStats) Start(monitoringport int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRootRequest)
	addr := fmt.Sprintf(":%d", monitoringport)
	log.Infof("Starting http json server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("Failed to start listener: %v", err)
	}
}

// handleRootRequest is a handler used for all http monitoring requests
func (s *JSONStats) handleRootRequest(w http.ResponseWriter, _ *http.Request) {
	js, err := json.Marshal(s.Snapshot())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(js); err != nil {
		log.Errorf("Failed to reply: %v", err)
	}
}
