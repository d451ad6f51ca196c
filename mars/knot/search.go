package knot

import (
	"math"
	"sort"

	"github.com/katalvlaran/mars/orth"
)

// Options configures one KnotSearch call for a fixed (parent, feature)
// pair. NumVariables (n) feeds the endspan/minspan derivation formulas.
type Options struct {
	Endspan         int // -1 = derive from EndspanAlpha
	EndspanAlpha    float64
	Minspan         int // -1 = derive from MinspanAlpha
	MinspanAlpha    float64
	CheckEvery      int // -1 = derive from MinSearchPoints
	MinSearchPoints int
	AllowLinear     bool
	NumVariables    int
}

// Result is the best hinge knot (if any eligible knot exists) and,
// when AllowLinear is set, the knotless linear alternative's reduction,
// for one (parent, feature) combination.
type Result struct {
	HasHinge        bool
	Knot            float64
	ReductionHinge  float64 // combined h+ / h- weighted RSS reduction estimate
	HasLinear       bool
	ReductionLinear float64
}

// group is one distinct feature value among the active (p != 0) rows,
// and the original row indices sharing it.
type group struct {
	value float64
	rows  []int
}

// Search finds the best knot (and, if requested, the knotless linear
// alternative) for appending a term with parent p and feature column x
// to the model currently tracked by upd. priorKnots lists knot values
// already chosen for this exact (parent, feature) pair in earlier
// forward-pass iterations, honored by the minspan constraint.
func Search(p, x []float64, upd *orth.Updater, priorKnots []float64, opts Options) (Result, error) {
	m := len(x)
	w := upd.Weights()
	y := upd.Response()

	// reductionEpsilon bounds how big a candidate's RSS reduction must be,
	// relative to the total weighted sum of squares of y, before it is
	// trusted as real rather than summation-order rounding noise: hy and
	// projSum in directionalReduction are accumulated via a running sweep,
	// while orth.Updater's own qty is accumulated in natural column order,
	// so a response with (near-)zero true reduction (e.g. constant y) can
	// leave a ~1e-13-scale nonzero residual in tildeHY that must not be
	// mistaken for an improving candidate.
	var totalYY float64
	for i := 0; i < m; i++ {
		totalYY += w[i] * y[i] * y[i]
	}
	reductionEpsilon := orth.CollinearityThreshold * totalYY

	// Stage 1: build the active row set (p != 0) sorted by feature value,
	// grouped by distinct value to handle ties correctly.
	type row struct {
		idx int
		val float64
	}
	active := make([]row, 0, m)
	for i := 0; i < m; i++ {
		if p[i] != 0 {
			active = append(active, row{idx: i, val: x[i]})
		}
	}
	c := len(active)
	if c == 0 {
		return Result{}, ErrNoEligibleKnots
	}
	sort.Slice(active, func(i, j int) bool { return active[i].val < active[j].val })

	groups := make([]group, 0, c)
	for _, r := range active {
		if len(groups) > 0 && groups[len(groups)-1].value == r.val {
			groups[len(groups)-1].rows = append(groups[len(groups)-1].rows, r.idx)
			continue
		}
		groups = append(groups, group{value: r.val, rows: []int{r.idx}})
	}
	numGroups := len(groups)

	// rank[g] = count of active rows strictly before group g.
	rank := make([]int, numGroups)
	acc := 0
	for g := 0; g < numGroups; g++ {
		rank[g] = acc
		acc += len(groups[g].rows)
	}

	// Stage 2: derive endspan, minspan, check_every.
	n := opts.NumVariables
	endspan := opts.Endspan
	if endspan == -1 {
		e := math.Round(3 - math.Log2(opts.EndspanAlpha/float64(n)))
		if e < 1 {
			e = 1
		}
		endspan = int(e)
	}
	minspan := opts.Minspan
	if minspan == -1 {
		val := math.Floor(-math.Log2(-(1.0/(float64(n)*float64(c)))*math.Log(1-opts.MinspanAlpha)) / 2.5)
		if val < 1 {
			val = 1
		}
		minspan = int(val)
	}
	checkEvery := opts.CheckEvery
	if checkEvery == -1 {
		checkEvery = int(math.Floor(float64(m) / float64(opts.MinSearchPoints)))
		if checkEvery < 1 {
			checkEvery = 1
		}
	}

	// Stage 3: mark eligible groups: drop the first/last `endspan` groups.
	eligible := make([]bool, numGroups)
	for g := endspan; g < numGroups-endspan; g++ {
		if g >= 0 && g < numGroups {
			eligible[g] = true
		}
	}

	// Stage 4: minspan thinning, scanning ascending and keeping a
	// candidate only if it is >= minspan active rows away from the last
	// accepted candidate and from every prior knot locatable in this
	// active set.
	priorRanks := make([]int, 0, len(priorKnots))
	for _, pk := range priorKnots {
		for g := 0; g < numGroups; g++ {
			if groups[g].value == pk {
				priorRanks = append(priorRanks, rank[g])
				break
			}
		}
	}
	lastAccepted := -1 << 30
	for g := 0; g < numGroups; g++ {
		if !eligible[g] {
			continue
		}
		if rank[g]-lastAccepted < minspan {
			eligible[g] = false
			continue
		}
		tooClose := false
		for _, pr := range priorRanks {
			d := rank[g] - pr
			if d < 0 {
				d = -d
			}
			if d < minspan {
				tooClose = true
				break
			}
		}
		if tooClose {
			eligible[g] = false
			continue
		}
		lastAccepted = rank[g]
	}

	// Stage 5: check_every striding over the remaining eligible groups,
	// in ascending value order.
	kept := 0
	for g := 0; g < numGroups; g++ {
		if !eligible[g] {
			continue
		}
		if kept%checkEvery != 0 {
			eligible[g] = false
		}
		kept++
	}

	// Stage 6: right-to-left sweep accumulating h+ running sums (active
	// set = rows with value strictly greater than the current group).
	k := upd.NumColumns()
	plusSpp := make([]float64, numGroups)
	plusSup := make([]float64, numGroups)
	plusSuu := make([]float64, numGroups)
	plusSpy := make([]float64, numGroups)
	plusSuy := make([]float64, numGroups)
	plusSpQ := make([][]float64, numGroups)
	plusSuQ := make([][]float64, numGroups)
	{
		var spp, sup, suu, spy, suy float64
		spQ := make([]float64, k)
		suQ := make([]float64, k)
		y := upd.Response()
		for g := numGroups - 1; g >= 0; g-- {
			plusSpp[g], plusSup[g], plusSuu[g], plusSpy[g], plusSuy[g] = spp, sup, suu, spy, suy
			plusSpQ[g] = append([]float64(nil), spQ...)
			plusSuQ[g] = append([]float64(nil), suQ...)
			for _, i := range groups[g].rows {
				pi, xi, wi := p[i], x[i], w[i]
				ui := pi * xi
				spp += wi * pi * pi
				sup += wi * pi * ui
				suu += wi * ui * ui
				spy += wi * pi * y[i]
				suy += wi * ui * y[i]
				for j := 0; j < k; j++ {
					qj := upd.Column(j)[i]
					spQ[j] += wi * pi * qj
					suQ[j] += wi * ui * qj
				}
			}
		}
	}

	// Stage 7: left-to-right sweep accumulating h- running sums (active
	// set = rows with value strictly less than the current group).
	minusSpp := make([]float64, numGroups)
	minusSup := make([]float64, numGroups)
	minusSuu := make([]float64, numGroups)
	minusSpy := make([]float64, numGroups)
	minusSuy := make([]float64, numGroups)
	minusSpQ := make([][]float64, numGroups)
	minusSuQ := make([][]float64, numGroups)
	{
		var spp, sup, suu, spy, suy float64
		spQ := make([]float64, k)
		suQ := make([]float64, k)
		y := upd.Response()
		for g := 0; g < numGroups; g++ {
			minusSpp[g], minusSup[g], minusSuu[g], minusSpy[g], minusSuy[g] = spp, sup, suu, spy, suy
			minusSpQ[g] = append([]float64(nil), spQ...)
			minusSuQ[g] = append([]float64(nil), suQ...)
			for _, i := range groups[g].rows {
				pi, xi, wi := p[i], x[i], w[i]
				ui := pi * xi
				spp += wi * pi * pi
				sup += wi * pi * ui
				suu += wi * ui * ui
				spy += wi * pi * y[i]
				suy += wi * ui * y[i]
				for j := 0; j < k; j++ {
					qj := upd.Column(j)[i]
					spQ[j] += wi * pi * qj
					suQ[j] += wi * ui * qj
				}
			}
		}
	}

	// Stage 8: evaluate every eligible group, track the maximizer with
	// the documented tie-breaks (larger reduction; then smaller knot;
	// then smaller sample index).
	qty := make([]float64, k)
	for j := 0; j < k; j++ {
		qty[j] = upd.QTY(j)
	}

	best := Result{}
	bestSampleIdx := int(^uint(0) >> 1) // max int, for the final tie-break
	for g := 0; g < numGroups; g++ {
		if !eligible[g] {
			continue
		}
		v := groups[g].value
		reduction := directionalReduction(v, plusSpp[g], plusSup[g], plusSuu[g], plusSpy[g], plusSuy[g], plusSpQ[g], plusSuQ[g], qty, +1) +
			directionalReduction(v, minusSpp[g], minusSup[g], minusSuu[g], minusSpy[g], minusSuy[g], minusSpQ[g], minusSuQ[g], qty, -1)
		if reduction <= reductionEpsilon {
			continue // not a meaningful improvement; within rounding noise
		}

		sampleIdx := groups[g].rows[0]
		for _, ridx := range groups[g].rows {
			if ridx < sampleIdx {
				sampleIdx = ridx
			}
		}

		if !best.HasHinge ||
			reduction > best.ReductionHinge ||
			(reduction == best.ReductionHinge && v < best.Knot) ||
			(reduction == best.ReductionHinge && v == best.Knot && sampleIdx < bestSampleIdx) {
			best.HasHinge = true
			best.Knot = v
			best.ReductionHinge = reduction
			bestSampleIdx = sampleIdx
		}
	}

	// Stage 9: knotless linear alternative, evaluated over the full
	// (unrestricted) u = p*x vector via the authoritative orthogonalizer.
	if opts.AllowLinear {
		u := make([]float64, m)
		for i := 0; i < m; i++ {
			u[i] = p[i] * x[i]
		}
		reduction, accepted, err := upd.TrialProjection(u)
		if err != nil {
			return Result{}, err
		}
		if accepted && reduction > reductionEpsilon {
			best.HasLinear = true
			best.ReductionLinear = reduction
		}
	}

	if !best.HasHinge && !best.HasLinear {
		return Result{}, ErrNoEligibleKnots
	}

	return best, nil
}

// directionalReduction computes the RSS reduction from a single hinge
// direction (sign=+1 for h+, sign=-1 for h-) at knot v, given the
// running sufficient statistics accumulated for that direction's active
// set, orthogonalized against the existing columns' cached qty.
func directionalReduction(v, spp, sup, suu, spy, suy float64, spQ, suQ []float64, qty []float64, sign float64) float64 {
	var hh, hy float64
	if sign > 0 {
		hh = suu - 2*v*sup + v*v*spp
		hy = suy - v*spy
	} else {
		hh = suu - 2*v*sup + v*v*spp // squared terms are sign-invariant
		hy = v*spy - suy
	}
	if hh <= 0 {
		return 0
	}
	var projSum, normSum float64
	for j := range spQ {
		var hq float64
		if sign > 0 {
			hq = suQ[j] - v*spQ[j]
		} else {
			hq = v*spQ[j] - suQ[j]
		}
		normSum += hq * hq
		projSum += hq * qty[j]
	}
	tildeHH := hh - normSum
	if tildeHH <= 1e-20*hh {
		return 0 // collinear with the existing basis in this direction
	}
	tildeHY := hy - projSum

	return (tildeHY * tildeHY) / tildeHH
}
