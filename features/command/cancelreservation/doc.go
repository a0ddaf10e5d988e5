// Package cancelreservation takes a patron out of a waiting queue. When the cancelled reservation
// had already been offered a copy, the offer moves on to the next patron in the queue.
package cancelreservation
