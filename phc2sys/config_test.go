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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	// neither a source clock nor a PPS device
	require.Error(t, cfg.Validate())

	cfg.Source = "/dev/ptp0"
	require.NoError(t, cfg.Validate())

	cfg.Source = ""
	cfg.PPSDevice = "/dev/pps0"
	require.NoError(t, cfg.Validate())

	cfg.Interval = 0
	require.Error(t, cfg.Validate())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.InEpsilon(t, 0.7, cfg.KP, 0.00001)
	require.InEpsilon(t, 0.3, cfg.KI, 0.00001)
	require.Equal(t, time.Second, cfg.Interval)
}

func TestReadConfig(t *testing.T) {
	content := `
source: /dev/ptp0
destination: /dev/ptp2
reading_delay_ns: 250
kp: 0.5
monitoring_port: 8888
`
	path := filepath.Join(t.TempDir(), "phc2sys.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, ReadConfig(path, cfg))
	require.Equal(t, "/dev/ptp0", cfg.Source)
	require.Equal(t, "/dev/ptp2", cfg.Destination)
	require.Equal(t, int64(250), cfg.ReadingDelayNS)
	require.InEpsilon(t, 0.5, cfg.KP, 0.00001)
	// untouched fields keep their defaults
	require.InEpsilon(t, 0.3, cfg.KI, 0.00001)
	require.Equal(t, time.Second, cfg.Interval)
	require.Equal(t, 8888, cfg.MonitoringPort)
}

func TestReadConfigMissingFile(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, ReadConfig("/nonexistent/phc2sys.yaml", cfg))
}
