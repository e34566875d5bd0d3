// Package session coordinates recording and playback.
//
// A Controller owns the single live sequence and the process-wide session
// state. It is armed for one mode at a time (Record or Play) and moves
// between states on the start and stop hotkeys:
//
//	Idle --start--> Recording --stop--> Idle   (armed for Record)
//	Idle --start--> Playing   --stop--> Idle   (armed for Play)
//
// Recording and Playing are mutually exclusive. The recorder only appends
// while Recording and the player only reads while Playing, so the sequence
// itself needs no lock beyond the controller's transition lock.
//
// A finished session disarms the controller. A stop signal while Idle is
// dropped under IdleStopIgnore; under IdleStopExit it disarms the
// controller and closes the Exit channel. Under IdleStopDisarm it clears
// the armed mode and reports an Idle to Idle transition, which ends the
// session without starting it.
//
// # Notifications
//
// HandleNotification must be called from a single goroutine; Run does this
// by draining an input.Queue. Start, Stop, Arm and the load operations are
// safe to call from any goroutine.
package session
