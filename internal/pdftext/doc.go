// Package pdftext reads what a booklet says: text search across pages,
// page counts, structural validation and Info-dictionary metadata.
//
// Text extraction shells out to poppler's pdftotext, the same toolchain
// that renders previews. Page counting and validation use pdfcpu.
package pdftext
