// Package storage provides an interface to handle backend storage objects.
//
// This package supports the following backends:
//   - S3 (AWS)
//   - local file system
package storage
