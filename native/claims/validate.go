package claims

// ClaimFields carries the caller-supplied descriptive and financial fields of
// a claim submission or edit, validated as one unit.
type ClaimFields struct {
	HospitalType              HospitalType
	HospitalName              string
	HospitalAddress           string
	HospitalCity              string
	HospitalZipCode           uint32
	HospitalPhoneNumber       string
	HospitalBillInvoiceNumber string
	Note                      string
	ClaimAmount               uint64
	Ailment                   string
	InsuranceCompanyName      string
}

func validatePatientName(first, last string) error {
	if len(first) > MaxPatientNameLen {
		return ErrPatientFirstNameTooLong
	}
	if len(last) > MaxPatientNameLen {
		return ErrPatientLastNameTooLong
	}
	return nil
}

func validateHospitalFields(name, address, city, phone string) error {
	if len(name) > MaxHospitalNameLen {
		return ErrHospitalNameTooLong
	}
	if len(address) > MaxHospitalAddressLen {
		return ErrHospitalAddressTooLong
	}
	if len(city) > MaxHospitalCityLen {
		return ErrHospitalCityTooLong
	}
	if len(phone) > MaxPhoneNumberLen {
		return ErrHospitalPhoneNumberTooLong
	}
	return nil
}

func validateNote(note string) error {
	if len(note) > MaxNoteLen {
		return ErrNoteTooLong
	}
	return nil
}

func validateClaimFields(fields ClaimFields) error {
	if !fields.HospitalType.Valid() {
		return ErrHospitalTypeInvalid
	}
	if err := validateHospitalFields(fields.HospitalName, fields.HospitalAddress, fields.HospitalCity, fields.HospitalPhoneNumber); err != nil {
		return err
	}
	if len(fields.HospitalBillInvoiceNumber) > MaxInvoiceNumberLen {
		return ErrHospitalBillInvoiceNumberTooLong
	}
	if len(fields.Ailment) > MaxAilmentLen {
		return ErrAilmentTooLong
	}
	if err := validateNote(fields.Note); err != nil {
		return err
	}
	if len(fields.InsuranceCompanyName) > MaxInsuranceCompanyNameLen {
		return ErrInsuranceCompanyNameTooLong
	}
	return nil
}
