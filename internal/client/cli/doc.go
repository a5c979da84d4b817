// Package cli is the interactive NoteKeeper command-line client.
//
// App wires configuration, the Identity Service transport (HTTP or gRPC),
// the local token database, the session store and the notification queue,
// then runs a line-oriented REPL:
//
//	help                      list commands
//	register | login | logout
//	refresh                   exchange the session token
//	whoami | profile | password
//	notifications             live notifications with remaining time
//	dismiss <n>               dismiss notification n
//	clear                     dismiss everything and forget the last error
//	status                    session and connectivity state
//	exit | quit
//
// Command outcomes are pushed to the notification queue; notifications that
// appeared during a command are printed once it returns. A background
// watcher pings the service and logs online/offline changes.
package cli
