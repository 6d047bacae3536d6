// Package pipeline annotates review datasets.
//
// ProcessChunk cleans and classifies one batch of rows. Driver streams a file
// through ProcessChunk batch by batch, concatenates the results into a single
// table and finishes with a smoke test over a few sample reviews, printing
// the same progress lines at every step.
package pipeline
