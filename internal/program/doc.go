// Package program implements the record lifecycle: the post store, the
// profile store, and the ownership guard that gates every mutation.
//
// The program is pure logic over narrow collaborators. Storage allocation,
// the host clock, and token-account lookups are supplied by the caller, and
// each operation either completes or returns a typed *Error. Operations run
// every check before the first write, so a rejected operation never leaves a
// partial change behind even when the collaborator is not transactional.
//
// Record addresses are derived with address.PostAddress and
// address.ProfileAddress under the program id, so clients can locate any
// record without asking the program.
package program
