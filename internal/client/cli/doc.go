// Package cli provides the interactive peer client.
//
// It reads one command per line, sends the matching request to the
// coordinator and prints the outcome. Commands are case-insensitive:
//
//	register <user>
//	unregister <user>
//	connect <user> <port>
//	disconnect <user>
//	publish <file> <description...>
//	delete <file>
//	list_users
//	list_content <user>
//	get_file <user> <file>
//	help
//	quit
//
// connect starts a session: publish, delete and the list and get_file
// commands act as the connected user. The prompt is only printed when
// stdin is a terminal.
package cli
