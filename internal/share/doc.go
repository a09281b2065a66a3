// Package share captures text handed to the process by an external share
// action and hands it to the UI exactly once.
//
// A Tracker remembers the most recent activation of the process. When an
// activation arrives, and again on every foreground transition, it checks
// whether the activation is a plain-text send and, if so, offers the text
// to a Cell. The UI drains the Cell through the "share" channel: the first
// read returns the text, the next returns nothing until another share
// arrives.
//
// Only one payload is ever pending; a newer share overwrites an unread one.
package share
