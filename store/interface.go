package store

import "github.com/harrynew/workflowbot/models"

// WorkflowStore defines the persistence boundary for the workflow registry.
// It is read once at process start and written at shutdown or disconnect;
// the in-memory registry is authoritative in between.
type WorkflowStore interface {
	// Initialize configures the store with backend-specific settings such
	// as the snapshot path and encoding. It must be called before any other
	// store operation.
	Initialize(config map[string]string) error

	// Load reads the persisted snapshot and reconstructs the full registry,
	// including Project↔Team links. A missing snapshot yields an empty
	// registry, not an error.
	Load() (*models.Registry, error)

	// Save serializes the full registry to the snapshot.
	Save(registry *models.Registry) error

	// Backup copies the current snapshot to the destination path.
	Backup(destinationPath string) error

	// Restore replaces the current snapshot with data from the source path.
	Restore(sourcePath string) error

	// Close releases any resources held by the store, such as file locks.
	Close() error
}
