package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *ReleaseError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *ReleaseError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *ReleaseError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Pipeline stage errors

func StagingFailed(operation string, cause error) *ReleaseError {
	return Wrap(cause, CategoryStaging, SeverityFatal, "staging failed").
		WithContext("operation", operation)
}

func BuildFailed(artifact string, cause error) *ReleaseError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "distribution build failed").
		WithContext("artifact", artifact)
}

func DocsFailed(backend string, cause error) *ReleaseError {
	return Wrap(cause, CategoryDocs, SeverityFatal, "documentation generation failed").
		WithContext("backend", backend)
}

func ArchiveFailed(archive string, cause error) *ReleaseError {
	return Wrap(cause, CategoryArchive, SeverityFatal, "documentation packaging failed").
		WithContext("archive", archive)
}

// Publish errors

func PublishFailed(artifact string, cause error) *ReleaseError {
	return Wrap(cause, CategoryPublish, SeverityFatal, "upload failed").
		WithContext("artifact", artifact)
}

func AuthFailed(index string) *ReleaseError {
	return New(CategoryAuth, SeverityFatal, "package index rejected credentials").
		WithContext("index", index)
}

// Infrastructure errors

func WorkspaceError(operation string, cause error) *ReleaseError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "workspace operation failed").
		WithContext("operation", operation)
}

func HistoryError(operation string, cause error) *ReleaseError {
	return Wrap(cause, CategoryHistory, SeverityError, "history store operation failed").
		WithContext("operation", operation)
}
