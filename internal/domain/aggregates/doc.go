// Package aggregates defines the write boundaries of a lesson session:
// conversation cycles and gradings. Each boundary commits all of its rows
// in one transaction or none of them.
package aggregates
