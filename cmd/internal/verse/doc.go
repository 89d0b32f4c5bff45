// Package verse serves the verse of the day.
//
// Selection is a pure function of the calendar date and the verse count:
// day N of the year maps to verse (N-1) mod count in id order, so every
// request on the same day sees the same verse without any stored state.
package verse
