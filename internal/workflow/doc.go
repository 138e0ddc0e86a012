// Package workflow drives the upload conversation with each user.
//
// The Controller receives chat events, advances the user's UploadSession
// through its states (choosing a discipline, uploading files or a scan,
// choosing the lesson type, entering the topic) and, once the topic
// arrives, generates the session artifacts and publishes them. Events that
// do not fit the current state are ignored. Group chats only see the
// library message, which is reposted whenever someone writes there.
//
// Every handler runs in the calling goroutine. The transport is expected
// to deliver one user's events sequentially; different users may be
// handled concurrently.
package workflow
