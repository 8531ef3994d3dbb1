// Package errors provides the structured error type shared by the build
// engine, the pipeline modules and the upstream clients.
//
// Every failure that should reach the operator is an *AppError carrying a
// machine-readable code, a retryable flag and diagnostic details (pipeline
// name, repository, upstream status). Local recovery decisions are made on
// the code, never on the message text.
package errors
