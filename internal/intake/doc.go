// Package intake turns inbound chat attachments and text into local files
// recorded on the user's upload session.
//
// Nothing leaves the machine at this stage: attachments are downloaded into
// the session temp directory under a byte ceiling, audio is normalized to
// MP3, and the session is updated. Only the first audio of a session is
// kept; in scan mode only images are accepted. Results computed for a
// session that was reset while the download ran are thrown away.
package intake
