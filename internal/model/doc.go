// Package model defines the domain types shared across the install-new CLI:
// install modes, exit codes, and the CLIError type that carries an exit code
// from any layer up to the command dispatcher.
package model
