// Package storage is the object store that build output is written to and
// published from.
//
// A Storage backend is selected by Config.Provider. Backends register a
// factory in their package init, so the binary imports the ones it needs:
//
//   - storage/local: a directory on disk, the default output target
//   - storage/s3: Amazon S3 and S3-compatible services, used by deployment
//     pipelines
//   - storage/memory: an in-process map for tests and dry runs
//
// Configuration:
//
//	storage:
//	  provider: "s3"
//	  bucket: "site-output"
//	  region: "us-east-1"
package storage
