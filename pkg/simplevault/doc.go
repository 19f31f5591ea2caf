// Package simplevault implements a multi-tenant personal media and document
// vault: users store resources (books, documents, images, music, videos),
// attach content variants and thumbnails, and retrieve them again.
//
// The core of the package is the identity and metadata subsystem. Resource
// ids are ULIDs allocated per (user, resource type) by ResourceIDManager;
// content ids are small integers allocated per resource by ContentIDManager
// using minimum-excludant semantics. Both managers are lazy read-through
// caches over the authoritative StorageBackend. All operations for one user
// are serialized by a per-user lock.
//
// Construct a Service with New and a storage backend:
//
//	backend := memory.New()
//	svc, err := simplevault.New(simplevault.WithStorageBackend(backend))
//
// Storage backends live under storage/ (fs, memory, s3, postgres). The HTTP
// surface lives in the api subpackage, configuration in config.
package simplevault
