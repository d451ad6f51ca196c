// Package forward implements the MARS forward pass: the greedy loop
// that repeatedly selects the (parent, feature, knot, allow_linear)
// triple giving the largest weighted RSS reduction and appends the
// corresponding term(s) to the Basis, until a stopping condition fires.
package forward
