// Package updatebook edits a catalog entry. Empty text fields keep their stored value. Changing the number of copies moves the shelf count
// by the same amount, copies on loan stay on loan. Every copy added while patrons wait is offered
// to the reservation queue right away.
//
// Books are never removed from the catalog since loans keep referring to them.
package updatebook
