/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package modexp

import "github.com/pkg/errors"

var (
	// ErrInvalidModulus is returned when a Montgomery domain is requested for
	// a modulus that is even or not positive.
	ErrInvalidModulus = errors.New("invalid modulus")

	// ErrInvalidWindowSize is returned when the sliding window is outside
	// [MinWindow, MaxWindow].
	ErrInvalidWindowSize = errors.New("invalid window size")

	// ErrNegativeExponent is returned for exponents below zero.
	ErrNegativeExponent = errors.New("negative exponent")
)
