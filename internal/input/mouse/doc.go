// Package mouse defines pointer buttons and positions.
//
// Buttons form a closed enumeration that serializes by name ("left",
// "right", "middle", "x1", "x2"). Position is an absolute screen
// coordinate; Delta computes the relative move needed to reach a target,
// which is how playback drives a pointer that only supports relative
// motion.
//
// State tracks which buttons are held so that sources reporting a button
// mask (terminals, for example) can be turned into discrete press and
// release transitions.
package mouse
