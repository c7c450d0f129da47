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
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/precisiontime/phc2sys/servo"
)

// Config specifies phc2sys run options
type Config struct {
	Destination    string        `yaml:"destination"`      // clock to discipline, PHC device path, empty means CLOCK_REALTIME
	Source         string        `yaml:"source"`           // PHC device to compare the destination against
	PPSDevice      string        `yaml:"pps_device"`       // PPS device providing pulse edges, takes precedence over direct comparison
	ReadingDelayNS int64         `yaml:"reading_delay_ns"` // compensation for the latency of sequential clock reads
	KP             float64       `yaml:"kp"`               // servo proportional gain
	KI             float64       `yaml:"ki"`               // servo integral gain
	Interval       time.Duration `yaml:"interval"`         // pause between direct comparisons, in ns when set via YAML
	MonitoringPort int           `yaml:"monitoring_port"`  // port of the JSON stats endpoint, 0 disables it
}

// DefaultConfig generates config with the default servo gains and
// a 1s sampling interval, which the drift measurement relies on
func DefaultConfig() *Config {
	return &Config{
		KP:       servo.DefaultKP,
		KI:       servo.DefaultKI,
		Interval: time.Second,
	}
}

// ReadConfig merges the YAML file at path into cfg
func ReadConfig(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Validate checks the config describes a usable run: there must be
// some configured source of samples and a sane sampling cadence
func (c *Config) Validate() error {
	if c.Source == "" && c.PPSDevice == "" {
		return fmt.Errorf("no source of samples: set either a source clock device or a PPS device")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return nil
}
