// Package marknotificationread marks a patron notification as read. A read overdue notification
// lets the next sweep notify the patron again.
package marknotificationread
