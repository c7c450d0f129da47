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

/*
Package clock wraps the CLOCK_ADJTIME and clock_gettime/clock_settime
syscalls for a clockid, be it the system realtime clock or a PHC.

Supported operations:
  - reading the current frequency correction via FrequencyPPB
  - adjusting the frequency via AdjFreqPPB, where the servo's ppb value
    is converted to the timex 16-bit fixed point ppm encoding
  - stepping the clock forwards or backwards via Step, with the signed
    nanosecond offset decomposed into whole seconds and a non-negative
    sub-second remainder as clock_adjtime(2) requires
  - absolute read and write via Time and SetTime
  - querying the maximum frequency adjustment via MaxFreqPPB
  - marking the clock synchronized via SetSync

The kernel rejects malformed requests; errors are returned as-is
together with the clock state where the syscall reports one.
*/
package clock
