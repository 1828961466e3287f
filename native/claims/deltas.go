package claims

// Counter mutations are funneled through the checked helpers below so that a
// wrap can never slip through silently, and through scopeSet so the fan-out
// across global, submitter, patient, processor, region, hospital and insurer
// scopes stays in one auditable place per transition.

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

func addChecked[T unsigned](dst *T, delta T) error {
	if *dst+delta < *dst {
		return ErrCounterOverflow
	}
	*dst += delta
	return nil
}

func subChecked[T unsigned](dst *T, delta T) error {
	if delta > *dst {
		return ErrCounterUnderflow
	}
	*dst -= delta
	return nil
}

func incChecked[T unsigned](dst *T) error {
	return addChecked(dst, 1)
}

func decChecked[T unsigned](dst *T) error {
	return subChecked(dst, 1)
}

// scopeSet collects the aggregate records a transition touches. Any scope may
// be nil; it is then skipped. The per-scope asymmetries (the processor scope
// carries amounts and reversal counters but never shifts its approved or
// denied claim counts on undeny and revoke) mirror the ledger's bookkeeping
// rules exactly.
type scopeSet struct {
	stats     *ProcessorStats
	submitter *Submitter
	patient   *Patient
	processor *Processor
	state     *State
	hospital  *Hospital
	insurer   *InsuranceCompany
}

// applyApproval adds the approved count and amount at every scope.
func (s scopeSet) applyApproval(amount uint64) error {
	if s.stats != nil {
		if err := incChecked(&s.stats.ApprovedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.stats.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.submitter != nil {
		if err := incChecked(&s.submitter.ApprovedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.submitter.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.patient != nil {
		if err := incChecked(&s.patient.ApprovedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.patient.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.processor != nil {
		if err := incChecked(&s.processor.ApprovedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.processor.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.state != nil {
		if err := incChecked(&s.state.ApprovedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.state.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.hospital != nil {
		if err := incChecked(&s.hospital.ApprovedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.hospital.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.insurer != nil {
		if err := incChecked(&s.insurer.ApprovedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.insurer.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	return nil
}

// applyDenial adds the denied count at every scope.
func (s scopeSet) applyDenial() error {
	if s.stats != nil {
		if err := incChecked(&s.stats.DeniedClaimCount); err != nil {
			return err
		}
	}
	if s.submitter != nil {
		if err := incChecked(&s.submitter.DeniedClaimCount); err != nil {
			return err
		}
	}
	if s.patient != nil {
		if err := incChecked(&s.patient.DeniedClaimCount); err != nil {
			return err
		}
	}
	if s.processor != nil {
		if err := incChecked(&s.processor.DeniedClaimCount); err != nil {
			return err
		}
	}
	if s.state != nil {
		if err := incChecked(&s.state.DeniedClaimCount); err != nil {
			return err
		}
	}
	if s.hospital != nil {
		if err := incChecked(&s.hospital.DeniedClaimCount); err != nil {
			return err
		}
	}
	if s.insurer != nil {
		if err := incChecked(&s.insurer.DeniedClaimCount); err != nil {
			return err
		}
	}
	return nil
}

// applyMaxDenial adds the fast-path denial count. Only the global, submitter,
// patient and acting-admin scopes carry this counter.
func (s scopeSet) applyMaxDenial() error {
	if s.stats != nil {
		if err := incChecked(&s.stats.MaxDeniedClaimCount); err != nil {
			return err
		}
	}
	if s.submitter != nil {
		if err := incChecked(&s.submitter.MaxDeniedClaimCount); err != nil {
			return err
		}
	}
	if s.patient != nil {
		if err := incChecked(&s.patient.MaxDeniedClaimCount); err != nil {
			return err
		}
	}
	if s.processor != nil {
		if err := incChecked(&s.processor.MaxDeniedClaimCount); err != nil {
			return err
		}
	}
	return nil
}

// applyUndenial moves a denied claim to approved: undenied counts rise
// everywhere, the approved count and amount are added, and the denied count
// is walked back wherever it was incremented at denial time. The processor
// scope gains the amount and the undenied count only; its approved and
// denied claim counts are untouched because denial never raised them there
// for appealable paths.
func (s scopeSet) applyUndenial(amount uint64) error {
	if s.stats != nil {
		if err := incChecked(&s.stats.UndeniedClaimCount); err != nil {
			return err
		}
		if err := incChecked(&s.stats.ApprovedClaimCount); err != nil {
			return err
		}
		if err := decChecked(&s.stats.DeniedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.stats.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.submitter != nil {
		if err := incChecked(&s.submitter.UndeniedClaimCount); err != nil {
			return err
		}
		if err := incChecked(&s.submitter.ApprovedClaimCount); err != nil {
			return err
		}
		if err := decChecked(&s.submitter.DeniedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.submitter.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.patient != nil {
		if err := incChecked(&s.patient.UndeniedClaimCount); err != nil {
			return err
		}
		if err := incChecked(&s.patient.ApprovedClaimCount); err != nil {
			return err
		}
		if err := decChecked(&s.patient.DeniedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.patient.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.processor != nil {
		if err := incChecked(&s.processor.UndeniedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.processor.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.state != nil {
		if err := incChecked(&s.state.UndeniedClaimCount); err != nil {
			return err
		}
		if err := incChecked(&s.state.ApprovedClaimCount); err != nil {
			return err
		}
		if err := decChecked(&s.state.DeniedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.state.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.hospital != nil {
		if err := incChecked(&s.hospital.UndeniedClaimCount); err != nil {
			return err
		}
		if err := incChecked(&s.hospital.ApprovedClaimCount); err != nil {
			return err
		}
		if err := decChecked(&s.hospital.DeniedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.hospital.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.insurer != nil {
		if err := incChecked(&s.insurer.UndeniedClaimCount); err != nil {
			return err
		}
		if err := incChecked(&s.insurer.ApprovedClaimCount); err != nil {
			return err
		}
		if err := decChecked(&s.insurer.DeniedClaimCount); err != nil {
			return err
		}
		if err := addChecked(&s.insurer.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	return nil
}

// applyRevocation is the exact mirror of applyUndenial: the approval is
// rolled back and the claim is booked as denied.
func (s scopeSet) applyRevocation(amount uint64) error {
	if s.stats != nil {
		if err := incChecked(&s.stats.RevokedApprovalCount); err != nil {
			return err
		}
		if err := decChecked(&s.stats.ApprovedClaimCount); err != nil {
			return err
		}
		if err := incChecked(&s.stats.DeniedClaimCount); err != nil {
			return err
		}
		if err := subChecked(&s.stats.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.submitter != nil {
		if err := incChecked(&s.submitter.RevokedApprovalCount); err != nil {
			return err
		}
		if err := decChecked(&s.submitter.ApprovedClaimCount); err != nil {
			return err
		}
		if err := incChecked(&s.submitter.DeniedClaimCount); err != nil {
			return err
		}
		if err := subChecked(&s.submitter.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.patient != nil {
		if err := incChecked(&s.patient.RevokedApprovalCount); err != nil {
			return err
		}
		if err := decChecked(&s.patient.ApprovedClaimCount); err != nil {
			return err
		}
		if err := incChecked(&s.patient.DeniedClaimCount); err != nil {
			return err
		}
		if err := subChecked(&s.patient.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.processor != nil {
		if err := incChecked(&s.processor.RevokedApprovalCount); err != nil {
			return err
		}
		if err := subChecked(&s.processor.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.state != nil {
		if err := incChecked(&s.state.RevokedApprovalCount); err != nil {
			return err
		}
		if err := decChecked(&s.state.ApprovedClaimCount); err != nil {
			return err
		}
		if err := incChecked(&s.state.DeniedClaimCount); err != nil {
			return err
		}
		if err := subChecked(&s.state.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.hospital != nil {
		if err := incChecked(&s.hospital.RevokedApprovalCount); err != nil {
			return err
		}
		if err := decChecked(&s.hospital.ApprovedClaimCount); err != nil {
			return err
		}
		if err := incChecked(&s.hospital.DeniedClaimCount); err != nil {
			return err
		}
		if err := subChecked(&s.hospital.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	if s.insurer != nil {
		if err := incChecked(&s.insurer.RevokedApprovalCount); err != nil {
			return err
		}
		if err := decChecked(&s.insurer.ApprovedClaimCount); err != nil {
			return err
		}
		if err := incChecked(&s.insurer.DeniedClaimCount); err != nil {
			return err
		}
		if err := subChecked(&s.insurer.ApprovedClaimAmount, amount); err != nil {
			return err
		}
	}
	return nil
}

// applyAmountCorrection swaps the approved amount from old to new at every
// scope, used when an approved claim's amount is edited after resolution.
func (s scopeSet) applyAmountCorrection(oldAmount, newAmount uint64) error {
	for _, slot := range []*uint64{
		statsAmount(s.stats), submitterAmount(s.submitter), patientAmount(s.patient),
		processorAmount(s.processor), stateAmount(s.state), hospitalAmount(s.hospital),
		insurerAmount(s.insurer),
	} {
		if slot == nil {
			continue
		}
		if err := subChecked(slot, oldAmount); err != nil {
			return err
		}
		if err := addChecked(slot, newAmount); err != nil {
			return err
		}
	}
	return nil
}

func statsAmount(s *ProcessorStats) *uint64 {
	if s == nil {
		return nil
	}
	return &s.ApprovedClaimAmount
}

func submitterAmount(s *Submitter) *uint64 {
	if s == nil {
		return nil
	}
	return &s.ApprovedClaimAmount
}

func patientAmount(p *Patient) *uint64 {
	if p == nil {
		return nil
	}
	return &p.ApprovedClaimAmount
}

func processorAmount(p *Processor) *uint64 {
	if p == nil {
		return nil
	}
	return &p.ApprovedClaimAmount
}

func stateAmount(s *State) *uint64 {
	if s == nil {
		return nil
	}
	return &s.ApprovedClaimAmount
}

func hospitalAmount(h *Hospital) *uint64 {
	if h == nil {
		return nil
	}
	return &h.ApprovedClaimAmount
}

func insurerAmount(c *InsuranceCompany) *uint64 {
	if c == nil {
		return nil
	}
	return &c.ApprovedClaimAmount
}
