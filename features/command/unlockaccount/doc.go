// Package unlockaccount is the librarian action that lifts the block of a patron account.
// The sweep locks accounts, only this command unlocks them.
package unlockaccount
