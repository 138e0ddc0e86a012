// Command lecturebot runs the lecture upload bot and its maintenance tools.
//
// `lecturebot run` starts the Telegram daemon. The remaining commands work
// directly against the configuration, the state database and the remote
// store, so they are safe to use while the daemon is running.
package main
