// Package sam parses and represents SAM alignment records, and
// exposes InputFile/OutputFile for opening SAM files for reading and
// writing. BAM and CRAM are recognized by extension but rejected: no
// decoder for either is wired into this package.
package sam
