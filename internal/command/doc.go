// Package command routes command lines from the UI.
//
// A line is split on whitespace into a verb and its arguments; fields that may
// contain spaces arrive base64 encoded. Every loaded plugin sees the line
// first, then the verb is looked up in the built-in table. Failures are
// logged and never reach the caller.
package command
