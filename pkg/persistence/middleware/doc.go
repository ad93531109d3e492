// Package middleware wraps a ports.PromptStore with behavior applied on the
// way in and out: AES-GCM sealing with key rotation, and masking of secret
// literals before they are persisted.
package middleware
