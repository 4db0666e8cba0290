// Package cmd implements the command-line interface for send-gmail.
//
// This package provides the following commands:
//   - send: Send an email, authorizing first if needed
//   - auth: Run the OAuth2 authorization flow and store the token
//   - render: Print a body after template and Markdown rendering
//   - version: Display version information
package cmd
