package validation

import "strings"

// DonationPayload is a philanthropy transfer confirmation. The proof file is
// carried separately.
type DonationPayload struct {
	Name           string `json:"name" form:"name" validate:"reporter_name"`
	StudyProgram   string `json:"study_program" form:"study_program" validate:"study_program"`
	TransferAmount int64  `json:"transfer_amount" form:"transfer_amount" validate:"transfer_amount"`
}

// DonationInput is a validated donation.
type DonationInput struct {
	Name           string
	StudyProgram   string
	TransferAmount int64
}

// ValidateDonation checks p. hasProof tells whether a proof-of-transfer file
// came with the submission.
func ValidateDonation(p DonationPayload, hasProof bool) (*DonationInput, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.StudyProgram = strings.TrimSpace(p.StudyProgram)

	errs := check(p)
	if !hasProof {
		errs = merge(errs, Field("transfer_proof", "required", "bukti transfer wajib diunggah"))
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return &DonationInput{Name: p.Name, StudyProgram: p.StudyProgram, TransferAmount: p.TransferAmount}, nil
}
