// Package gcv implements the Generalized Cross-Validation criterion and
// its derived RSQ/GRSQ statistics shared by the forward and pruning
// passes. Keeping the formula in one place guarantees both passes agree
// on model selection.
package gcv
