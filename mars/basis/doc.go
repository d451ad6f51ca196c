// Package basis implements the BasisFunction term algebra and the Basis
// container described in the MARS core: a directed forest of Constant,
// Linear and Hinge terms rooted at a single Constant, plus the ordered,
// append-only collection that assigns each term a stable positional id.
//
// Position in the Basis is the term's identity for downstream coefficient
// alignment: column j of a Transform output is always the evaluation of
// the j-th unpruned term, in insertion order.
package basis
