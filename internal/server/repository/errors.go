package repository

import "errors"

// ErrCorruptPayment indicates a stored payment blob that could not be
// opened with the configured key.
var ErrCorruptPayment = errors.New("stored payment data could not be opened")
