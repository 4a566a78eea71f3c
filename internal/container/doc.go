// Package container is the boundary to the host dependency-injection
// container.
//
// The serializer configuration never constructs services itself. It hands
// plain, named values to a Registrar, and whatever container the host runs
// builds the runtime objects from them.
//
// # Implementations
//
//   - Memory: a thread-safe in-memory registrar backed by sync.Map. It is
//     what the CLI dumps from and what tests assert against.
//
// Hosts with a real container implement Registrar with a thin adapter.
package container
