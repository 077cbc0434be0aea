// Package plaintext tidies plain slide bodies.
package plaintext
