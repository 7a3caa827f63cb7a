// Package mask defines the point-prompt data model shared by the annotation
// editor, the backend client, and the renderer.
package mask
