// Package tui plays a puzzle interactively in the terminal.
//
// The App wraps a PartitionEngine in a tcell event loop: a goroutine
// feeds terminal events into a channel while a ticker redraws the board.
// The renderer classifies every cell border as hidden (interior of a
// committed rectangle), dim (plain grid line) or bright (rectangle
// outline) and picks box-drawing junction runes from the visible
// segments, so adjacent rectangles share clean borders.
//
// Bindings:
//
//	arrows      move the cursor, or resize the open rectangle
//	space       start a rectangle at the cursor, or commit the open one
//	ctrl+arrow  extend the open rectangle as far as it can go
//	d           delete the rectangle under the cursor (cancels first)
//	n           new random puzzle
//	r           reset the current puzzle
//	esc         cancel the open rectangle, or prompt to quit
//	q           quit
//
// The mouse works too: press starts a rectangle, dragging resizes it,
// releasing commits. A plain click on a committed rectangle deletes it.
package tui
