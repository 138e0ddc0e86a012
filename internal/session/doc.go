// Package session holds per-user upload sessions.
//
// UploadSession is the typed record driven by the workflow state machine:
// Idle -> ChoosingDiscipline -> UploadingFiles <-> UploadingScan ->
// ChoosingLessonType -> EnteringTopic -> Idle. Transition methods refuse
// moves the current mode does not permit and return an error tagged
// services.ErrState, which callers treat as "ignore".
//
// Store keys sessions by user id on top of go-cache so abandoned sessions
// expire; expiry and reset both remove the session's temp directory.
package session
