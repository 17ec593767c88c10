// Package textutil provides filename and token sanitization shared by the
// workspace and output naming code.
package textutil
