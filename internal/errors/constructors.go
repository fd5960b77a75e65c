package errors

// Convenience constructors for the pipeline's error taxonomy.

// Configuration errors: fatal, surfaced once at construction time.

func ConfigNotFound(path string) *PaniniError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func InputFolderMissing(path string) *PaniniError {
	return New(CategoryConfig, SeverityFatal, "input folder does not exist").
		WithContext("path", path)
}

func UnknownEngine(name string) *PaniniError {
	return New(CategoryConfig, SeverityFatal, "unknown templating engine").
		WithContext("engine", name)
}

func EngineSetupFailed(name string, cause error) *PaniniError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "templating engine setup failed").
		WithContext("engine", name)
}

func ValidationFailed(field, reason string) *PaniniError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Setup errors: fail the whole setup pass, no pages render.

func SetupFailed(stage string, cause error) *PaniniError {
	return Wrap(cause, CategorySetup, SeverityError, "setup failed").
		WithContext("stage", stage)
}

func DataFileInvalid(path string, cause error) *PaniniError {
	return Wrap(cause, CategoryData, SeverityError, "data file could not be parsed").
		WithContext("path", path)
}

// Render errors: contained per page, never propagate out of the batch.

func PageRenderFailed(page string, cause error) *PaniniError {
	return Wrap(cause, CategoryRender, SeverityWarning, "page failed to render").
		WithContext("page", page)
}

// Infrastructure errors.

func SinkWriteFailed(page string, cause error) *PaniniError {
	return Wrap(cause, CategorySink, SeverityError, "output sink write failed").
		WithContext("page", page)
}

func StoreError(operation string, cause error) *PaniniError {
	return Wrap(cause, CategoryStore, SeverityWarning, "event store operation failed").
		WithContext("operation", operation)
}
