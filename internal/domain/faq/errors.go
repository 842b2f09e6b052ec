package faq

import "errors"

// ErrNotFound is returned by repositories when the entry does not exist.
var ErrNotFound = errors.New("faq not found")
