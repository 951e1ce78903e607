// Package ui provides the small pieces of UI state the navigation guard
// drives: a loading bar, the active layout name and a tick scheduler.
//
// The guard only sees them through interfaces, so an embedding application
// can swap any of them for its own widgets.
package ui
