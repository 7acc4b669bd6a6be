// Package output serializes transcripts into one of two layouts: a UTF-8
// text file per input, or a single CSV table for the whole run. Both layouts
// are written with a UTF-8 byte order mark.
package output
