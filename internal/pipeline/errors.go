package pipeline

// Sentinel errors are declared in internal/domain so both the controller
// and its collaborators (provider, workspace, store) can return/compare
// them without importing this package.
