/*
Package ports defines the driven ports (interfaces) for the Weave engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various node catalogs, storage backends and graph sources.

# Key Interfaces

  - NodeClass: the capability set of a node type (declare, resolve, execute, validate).
  - PromptLoader: Responsible for loading Node definitions (e.g., from Loam or Memory).
  - PromptStore: Responsible for persisting and loading prompts.
  - DistributedLocker: Provides distributed locking for handling concurrent prompt access.
*/
package ports
