// Package cli implements the journal command line on top of cobra.
//
// Every command that touches entries logs in first: the username comes from
// the --user flag or a prompt, the password is always read from the terminal
// without echo. The session lives only for the duration of one command and
// is destroyed before the process exits.
//
// Entry bodies can be given with --body or piped on standard input, so
// commands like
//
//	journal add "Night Storm" -u alice < storm.txt
//
// work without an editor.
package cli
