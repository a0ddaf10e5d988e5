// Package patronnotifications implements the Patron Notifications query use case:
// the messages of one patron, oldest first, optionally only the unread ones.
package patronnotifications
