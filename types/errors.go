// Copyright (c) 2024, The Packsize Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds of the sizing pipeline. Call sites wrap these with context; test with errors.Is.
var (
	ErrInvalidCatalogEntry = errors.New("invalid catalog entry")
	ErrInvalidEfficiency   = errors.New("invalid converter efficiency")
	ErrUnreachableRail     = errors.New("rail not connected to system bus")
	ErrInvalidVoltage      = errors.New("invalid system voltage")
	ErrProfileGap          = errors.New("mission profile gap")
	ErrProfileOverlap      = errors.New("mission profile overlap")
	ErrInvalidPhase        = errors.New("invalid mission phase")
	ErrUnknownState        = errors.New("unknown operating state")
	ErrInvalidStep         = errors.New("invalid sampling step")
	ErrProfileTooLarge     = errors.New("mission profile too large")
	ErrInvalidCell         = errors.New("invalid cell specification")
	ErrInvalidMargin       = errors.New("invalid fuse safety margin")
	ErrInvalidFuseCatalog  = errors.New("invalid fuse catalog")
	ErrRatingExceeded      = errors.New("fuse rating exceeded")
)

// RatingExceededWarning is the non-fatal condition raised when no standard fuse covers the
// required margin current. The largest catalog value is used instead.
type RatingExceededWarning struct {
	MarginCurrent float64
	Largest       float64
}

func (w *RatingExceededWarning) Error() string {
	return fmt.Sprintf("%s: required %.2f A, largest standard fuse is %.1f A", ErrRatingExceeded, w.MarginCurrent, w.Largest)
}

func (w *RatingExceededWarning) Unwrap() error {
	return ErrRatingExceeded
}
