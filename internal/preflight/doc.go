// Package preflight provides readiness checks for the external services
// and filesystem paths the bot depends on.
//
// These checks run in two contexts:
//   - daemonrun calls RunAll at startup and logs every failed check, so a
//     misconfigured deployment is visible before the first upload fails.
//   - The CLI "lecturebot doctor" command prints the same results as a table.
//
// A failed check never stops the bot: publication and notes degrade per
// item, so the results are advisory.
package preflight
