// Package sweep implements the overdue enforcement sweep and its scheduler.
//
// One sweep runs in a single unit of work: it takes the sweep lock, finds every open loan
// that is past due or overdue with an unblocked account, marks the loan overdue, locks the
// patron account and writes at most one unread overdue notification per patron. It then
// expires reservation holds whose pick-up window passed and offers the freed copies to the
// next patron in the queue. Any failure rolls the whole sweep back.
//
// Concurrent calls in one process are coalesced onto one execution; across processes the
// store's sweep lock makes a second sweep skip. The Scheduler owns the single ticker that
// triggers sweeps periodically. Engine keeps no state between runs.
package sweep
