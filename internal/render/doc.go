// Package render converts message bodies before they are built into an
// envelope.
//
// Markdown turns CommonMark (with GitHub extensions) into HTML and never
// fails. Template substitutes variables with text/template and refuses to
// render a reference to a variable that was not supplied, so a typo in a
// placeholder cannot go out as a blank.
//
// Both are pure functions and may be chained with Body.
package render
