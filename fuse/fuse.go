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

// Package fuse picks the protective fuse for the battery bus from a catalog of standard ratings.
package fuse

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/robopack/packsize/logger"
	. "github.com/robopack/packsize/types"
)

// DefaultSafetyMargin is applied to the peak battery current before picking a rating.
const DefaultSafetyMargin = 1.2

// StandardRatings are the common automotive blade and MIDI fuse values, in amperes.
var StandardRatings = []float64{1, 2, 3, 5, 7.5, 10, 15, 20, 25, 30, 35, 40, 50, 60, 70, 80, 100, 125, 150}

type Selection struct {
	Rating        float64 `json:"rating_a" yaml:"rating_a"`
	MarginCurrent float64 `json:"margin_current_a" yaml:"margin_current_a"`
	Exceeded      bool    `json:"exceeded" yaml:"exceeded"`

	// Warning is set together with Exceeded.
	Warning *RatingExceededWarning `json:"-" yaml:"-"`
}

func ValidateCatalog(catalog []float64) error {
	if len(catalog) == 0 {
		return errors.Wrap(ErrInvalidFuseCatalog, "empty")
	}
	for _, r := range catalog {
		if !(r > 0) {
			return errors.Wrapf(ErrInvalidFuseCatalog, "rating %v A", r)
		}
	}
	return nil
}

// Select returns the smallest catalog rating not below peakCurrent*margin. When no rating is
// large enough the largest one is returned, flagged Exceeded with a RatingExceededWarning; the
// caller is expected to surface it.
func Select(peakCurrent, margin float64, catalog []float64) (Selection, error) {
	if !(margin > 1) {
		return Selection{}, errors.Wrapf(ErrInvalidMargin, "margin %v must be greater than 1", margin)
	}
	if err := ValidateCatalog(catalog); err != nil {
		return Selection{}, err
	}

	ratings := append([]float64(nil), catalog...)
	sort.Float64s(ratings)

	sel := Selection{MarginCurrent: peakCurrent * margin}
	i := sort.SearchFloat64s(ratings, sel.MarginCurrent)
	if i < len(ratings) {
		sel.Rating = ratings[i]
		logger.Debugf("fuse: %.2f A with margin -> %.1f A", sel.MarginCurrent, sel.Rating)
		return sel, nil
	}

	sel.Rating = ratings[len(ratings)-1]
	sel.Exceeded = true
	sel.Warning = &RatingExceededWarning{MarginCurrent: sel.MarginCurrent, Largest: sel.Rating}
	logger.Warnf("%v", sel.Warning)
	return sel, nil
}
