// Package console is a line-oriented transport for the notes bot: it reads
// commands from a terminal or a script, feeds them to a bot handler as chat
// interactions, and prints every render as plain text.
//
// Input lines:
//
//	/note                       open the create form
//	/notes [id]                 list notes, or show one
//	/about                      about the bot
//	click <button-id>           press a button from an earlier render
//	submit <title> | <content>  submit the open form
//	user <id> [name]            act as another user
//	join <guild> | leave <guild>
//	help, exit | quit
package console
