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

// Package phc resolves PHC character devices like /dev/ptp0 into
// clockids usable with the clock package.
package phc

import (
	"golang.org/x/sys/unix"

	log "github.com/sirupsen/logrus"
)

// ClockInvalid is the sentinel for a clockid that could not be opened.
// Callers must check for it; what is fatal and what degrades is their
// decision.
const ClockInvalid = int32(-1)

// FDToClockID converts file descriptor number to clockid.
// see man(3) clock_gettime, FD_TO_CLOCKID macros
func FDToClockID(fd uintptr) int32 {
	return int32((int(^fd) << 3) | 3)
}

// OpenClock resolves a PHC device path to a dynamic clockid.
// On failure it logs a diagnostic and returns ClockInvalid; the file
// descriptor stays open for the process lifetime, as the clockid is
// derived from it.
func OpenClock(device string) int32 {
	fd, err := unix.Open(device, unix.O_RDWR, 0)
	if err != nil {
		log.Errorf("cannot open %s: %v", device, err)
		return ClockInvalid
	}
	return FDToClockID(uintptr(fd))
}
