package harvest

// SelectContainer combines statistical ranking with semantic verdicts into
// one final container choice. The three-way branch is exhaustive over the
// validation status:
//
//   - unavailable: the top-scoring candidate wins (or none, if the list is
//     empty);
//   - accepted: the accepted candidate with the highest structural score
//     wins, which is not necessarily the validator's first acceptance;
//   - rejected-all: none, final. Statistics cannot reliably tell a dense
//     navigation widget from a record grid, so once semantic judgment was
//     requested and says no, it is authoritative.
func SelectContainer(candidates []CandidateContainer, v Validation) (CandidateContainer, bool) {
	if len(candidates) == 0 {
		return CandidateContainer{}, false
	}

	switch v.Status {
	case ValidationAccepted:
		best := -1
		for _, verdict := range v.Verdicts {
			if !verdict.Accepted {
				continue
			}
			if best == -1 || candidates[verdict.Candidate].StructuralScore > candidates[best].StructuralScore {
				best = verdict.Candidate
			}
		}
		if best == -1 {
			// Status and verdicts disagree; treat as unavailable.
			return candidates[0], true
		}
		return candidates[best], true

	case ValidationRejectedAll:
		return CandidateContainer{}, false

	default:
		// Candidates are sorted best first by Generate.
		return candidates[0], true
	}
}
