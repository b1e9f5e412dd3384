package domain

import "errors"

// ErrDownloadTooLarge is returned by a provider when the cumulative byte
// count of a streamed download exceeds max_download_bytes.
var ErrDownloadTooLarge = errors.New("download too large")

// ErrExtractTooLarge is returned by the workspace preparer when an
// archive's accumulated uncompressed size exceeds max_extracted_bytes.
var ErrExtractTooLarge = errors.New("extract too large")

// ErrNoProvider is returned by the provider registry when no provider's
// CanHandle matched the given URL.
var ErrNoProvider = errors.New("no provider can handle this url")

// ErrBatchWriterCrashed signals that the batch writer's completion handle
// finished before the controller sent its sentinel value.
var ErrBatchWriterCrashed = errors.New("batch-writer crashed")

// ErrPipelineDisabled is returned by Enqueue when pipeline.enabled=false.
var ErrPipelineDisabled = errors.New("pipeline disabled by configuration")
