// Package history persists the outcome of every task a scheduler reports
// into a SQLite database so past runs can be inspected after the process
// exits.
package history
