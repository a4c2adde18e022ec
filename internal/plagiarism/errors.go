package plagiarism

import "errors"

var (
	// ErrNotFound covers both a genuinely absent job and a job the caller is
	// not allowed to see: owner-scoped lookups deliberately do not reveal
	// whether a foreign job exists.
	ErrNotFound = errors.New("job not found")

	// ErrForbidden is returned by role- and ownership-gated operations that
	// do not hide the entity's existence.
	ErrForbidden = errors.New("forbidden")

	ErrUnsupportedFileType = errors.New("unsupported file type")

	ErrInvalidTransition = errors.New("invalid job transition")

	ErrStorageWriteFailure = errors.New("storage write failure")

	// ErrStorageInconsistency means a completed job's report file is missing
	// from the backing store.
	ErrStorageInconsistency = errors.New("report file missing from storage")
)
