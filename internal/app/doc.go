/*
Package app holds the collection-view controller.

A Controller owns the active collection, one record store per collection,
the request state of the current fetch cycle and the single add/edit form.
Every navigation starts a new fetch cycle identified by a Ticket; Load
reconciles the result only if its ticket is still current, so a slow
response for a collection the user already left is dropped.

Edits and additions never leave the process. Navigating to a collection
re-fetches it and replaces its store, discarding local changes.
*/
package app
