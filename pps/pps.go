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

// Package pps reads pulse-per-second edge timestamps from Linux PPS
// character devices such as /dev/pps0, see Linux Documentation/pps/pps.rst.
package pps

import (
	"fmt"
	"os"
	"time"
	"unsafe"

	"github.com/vtolstov/go-ioctl"
	"golang.org/x/sys/unix"
)

// Defined in Linux include/uapi/linux/pps.h
const (
	ppsMagic = 'p'
	// TimeInvalid marks a pps_ktime as carrying no valid timestamp
	TimeInvalid = uint32(1)
)

// ioctlPPSFetch is an IOCTL to wait for and read the last PPS event
var ioctlPPSFetch = ioctl.IOWR(ppsMagic, 0xa4, unsafe.Sizeof(FData{}))

// KTime is pps_ktime from linux/pps.h
type KTime struct {
	Sec   int64
	NSec  int32
	Flags uint32
}

// KInfo is pps_kinfo from linux/pps.h
type KInfo struct {
	AssertSequence uint32 /* seq. num. of assert event */
	ClearSequence  uint32 /* seq. num. of clear event */
	AssertTu       KTime  /* time of assert event */
	ClearTu        KTime  /* time of clear event */
	CurrentMode    int32  /* current mode bits */
}

// FData is pps_fdata, the request/response structure of PPS_FETCH
type FData struct {
	Info    KInfo
	Timeout KTime
}

// Device is an open PPS character device
type Device struct {
	f *os.File
}

// Open opens a PPS device such as /dev/pps0
func Open(device string) (*Device, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", device, err)
	}
	return &Device{f: f}, nil
}

// File returns the underlying device file
func (d *Device) File() *os.File {
	return d.f
}

// Close closes the underlying device file
func (d *Device) Close() error {
	return d.f.Close()
}

// Fetch blocks until the next PPS assert edge is captured, up to the
// given timeout, and returns the edge timestamp. A timeout or an ioctl
// failure is reported as an error, never as a stale timestamp.
func (d *Device) Fetch(timeout time.Duration) (sec int64, nsec int32, err error) {
	data := newFetchRequest(timeout)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), ioctlPPSFetch, uintptr(unsafe.Pointer(data)))
	if errno != 0 {
		return 0, 0, fmt.Errorf("ioctl PPS_FETCH on %s: %w", d.f.Name(), errno)
	}
	return data.Info.AssertTu.Sec, data.Info.AssertTu.NSec, nil
}

func newFetchRequest(timeout time.Duration) *FData {
	return &FData{
		Timeout: KTime{
			Sec:   int64(timeout / time.Second),
			NSec:  int32(timeout % time.Second),
			Flags: ^TimeInvalid,
		},
	}
}
