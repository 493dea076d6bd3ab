// Package provision defines the abstract stack provisioning system consumed
// by the lifecycle orchestrator.
//
// The [Client] interface covers stack mutation, status reads, snapshot
// lifecycle, and account identity resolution. The AWS-backed implementation
// lives in the aws subpackage; tests use in-memory fakes.
package provision
