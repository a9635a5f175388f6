package stock

// Preprocess runs the full cleaning pipeline in its canonical order:
//
//  1. validate input geometry (malformed rings abort, nothing is repaired)
//  2. orientate rings and remove duplicate coordinates
//  3. build the touching graph (overlaps abort)
//  4. simplify to the tolerance fixpoint with cross-footprint propagation
//  5. rebuild the touching graph against the simplified boundaries
//  6. remove collinear points and derive exposed perimeters
//  7. rebuild the touching graph once more
//  8. compose built islands and assign identifiers
//
// A tol of zero or less falls back to DefaultTolerance. On success every
// surviving footprint satisfies the tolerance, is valid, and carries its
// touching list, exposed chains, horizontal polygon and island id. The
// returned report accounts for every footprint that was dropped along the
// way.
func (s *Stock) Preprocess(tol float64) (*Report, error) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	report := &Report{Input: s.Len()}

	for _, id := range s.IDs() {
		f := s.byID[id]
		if err := validatePolygon(id, f.Polygon); err != nil {
			return nil, err
		}
	}
	for _, id := range s.IDs() {
		f := s.byID[id]
		Orientate(f.Polygon)
		f.Polygon = dedupePolygon(f.Polygon)
	}

	if err := s.BuildTouching(); err != nil {
		return nil, err
	}
	if err := s.Simplify(tol); err != nil {
		return nil, err
	}
	if err := s.BuildTouching(); err != nil {
		return nil, err
	}
	if err := s.CollinearPass(); err != nil {
		return nil, err
	}
	if err := s.BuildTouching(); err != nil {
		return nil, err
	}
	islands, err := s.ComposeIslands()
	if err != nil {
		return nil, err
	}

	report.Surviving = s.Len()
	report.Islands = islands
	for _, d := range s.dropped {
		switch d.Reason {
		case DropDegenerate:
			report.Degenerate++
		case DropHoleCascade:
			report.HoleCascade++
		}
	}
	report.ModalIsland, report.ModalIslandCount = s.modalIsland()
	return report, nil
}

// modalIsland returns the island holding the most non-shading footprints.
// Ties resolve to the lexicographically smallest name so the report is
// stable.
func (s *Stock) modalIsland() (string, int) {
	counts := make(map[string]int)
	for _, id := range s.IDs() {
		f := s.byID[id]
		if !f.Shading && f.Island != "" {
			counts[f.Island]++
		}
	}
	var best string
	bestN := 0
	for name, n := range counts {
		if n > bestN || (n == bestN && (best == "" || name < best)) {
			best = name
			bestN = n
		}
	}
	return best, bestN
}
