// Package aggregates implements the session write boundaries declared in
// internal/domain/aggregates on top of the table repos.
//
// Every write runs inside one transaction from the TxRunner. Failures are
// mapped onto aggregate error codes before they leave the package.
package aggregates
