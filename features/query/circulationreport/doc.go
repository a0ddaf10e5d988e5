// Package circulationreport implements the Circulation Report query use case: loan counts per
// status, active and blocked accounts, and copy stock per category.
package circulationreport
