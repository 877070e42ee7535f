package util

import "errors"

var (
	ErrEmptyQuery        = errors.New("query parameter required")
	ErrNoExtractableText = errors.New("no extractable text found in document")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
