// Package canvas renders mask point markers over a clip frame and classifies
// raw pointer events into add-positive or add-negative commands.
//
// Rendering is headless: the canvas draws at the frame's native resolution
// into an in-memory image which the editor snapshots to PNG for preview.
package canvas
