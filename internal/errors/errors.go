package errors

import (
	"errors"
)

// Is and As forward to the standard library so callers of this package do
// not need a second errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

// Fetch errors
var (
	// ErrTruncatedDownload is returned when the number of bytes received does
	// not match the Content-Length announced by the origin.
	ErrTruncatedDownload = errors.New("truncated download: body shorter than content-length")

	// ErrChecksumMismatch is returned when a downloaded file does not match
	// the sha256 recorded in the dataset registry.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrBadStatus is returned for any non-200 response from the origin.
	ErrBadStatus = errors.New("unexpected HTTP status from origin")
)

// Dataset / registry errors
var (
	// ErrDatasetUnknown is returned when a family name is not in the registry.
	ErrDatasetUnknown = errors.New("unknown dataset family")

	// ErrManifestInvalid is returned when an external manifest fails schema
	// validation.
	ErrManifestInvalid = errors.New("dataset manifest failed validation")
)

// Engine errors
var (
	// ErrReadOnly is returned when a write-style statement reaches a handle
	// opened in read-only mode. The guard fires before the driver so the
	// underlying file is never touched.
	ErrReadOnly = errors.New("connection is read-only")

	// ErrDBClosed is returned when operating on a closed connection.
	ErrDBClosed = errors.New("connection is closed")

	// ErrMissingFile is returned when opening a database file that does not
	// exist in read-only mode.
	ErrMissingFile = errors.New("database file does not exist")
)

// Lesson / exercise errors
var (
	// ErrLessonInvalid is returned when a lesson file fails schema validation.
	ErrLessonInvalid = errors.New("lesson file failed validation")

	// ErrLessonUnknown is returned when a lesson name is not built in and no
	// file of that name exists.
	ErrLessonUnknown = errors.New("unknown lesson")

	// ErrExpectedFailure is returned when a step documented to fail succeeds.
	ErrExpectedFailure = errors.New("step was expected to fail but succeeded")

	// ErrWrongFailure is returned when a step fails with a different kind of
	// error than the one it documents.
	ErrWrongFailure = errors.New("step failed with an undocumented error")

	// ErrSolutionMissing is returned when an exercise has no solution script.
	ErrSolutionMissing = errors.New("solution script not found")

	// ErrSolutionEmpty is returned when a solution script contains no SQL.
	ErrSolutionEmpty = errors.New("solution script is empty")

	// ErrInputMissing is returned when an exercise declares an input table
	// that no earlier step has produced.
	ErrInputMissing = errors.New("exercise input not defined by an earlier step")
)
