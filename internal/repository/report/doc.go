// Package report persists run reports.
//
// The FileRepository stores the report as protobuf JSON (a Struct with
// canonical Timestamp strings) so the file stays readable by any tool that
// speaks the protobuf well-known types.
package report
