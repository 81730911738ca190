package resume

// DateRange is the start/end pair entries in dated sections carry. Zero
// means the component was not supplied.
type DateRange struct {
	StartYear  int  `json:"startYear,omitempty"`
	StartMonth int  `json:"startMonth,omitempty"`
	EndYear    int  `json:"endYear,omitempty"`
	EndMonth   int  `json:"endMonth,omitempty"`
	Present    bool `json:"present,omitempty"`
}

// ValidateChronology enforces the cross-field date rules:
//   - present entries may not carry an end date and must carry a start year
//   - an end month requires an end year, a start month a start year
//   - any end component requires a start year
//   - the end may not precede the start, comparing year*100+month with the
//     start month defaulting to 1 and the end month to 12
//
// allowPresent is false for sections without an ongoing notion (education).
// Violations are rejected, never silently corrected.
func ValidateChronology(r DateRange, allowPresent bool) error {
	if r.Present && !allowPresent {
		return fieldErr("present", "is not allowed for this section")
	}

	if r.StartYear != 0 {
		if _, err := NormalizeYear("startYear", r.StartYear); err != nil {
			return err
		}
	}
	if r.EndYear != 0 {
		if _, err := NormalizeYear("endYear", r.EndYear); err != nil {
			return err
		}
	}
	if r.StartMonth != 0 {
		if _, err := NormalizeMonth("startMonth", r.StartMonth); err != nil {
			return err
		}
	}
	if r.EndMonth != 0 {
		if _, err := NormalizeMonth("endMonth", r.EndMonth); err != nil {
			return err
		}
	}

	if r.Present {
		if r.EndYear != 0 || r.EndMonth != 0 {
			return fieldErr("endYear", "must be empty for an ongoing entry")
		}
		if r.StartYear == 0 {
			return fieldErr("startYear", "is required for an ongoing entry")
		}
	}

	if r.EndMonth != 0 && r.EndYear == 0 {
		return fieldErr("endYear", "is required when an end month is set")
	}
	if r.StartMonth != 0 && r.StartYear == 0 {
		return fieldErr("startYear", "is required when a start month is set")
	}
	if (r.EndYear != 0 || r.EndMonth != 0) && r.StartYear == 0 {
		return fieldErr("startYear", "is required when an end date is set")
	}

	if r.StartYear != 0 && r.EndYear != 0 {
		startMonth := r.StartMonth
		if startMonth == 0 {
			startMonth = 1
		}
		endMonth := r.EndMonth
		if endMonth == 0 {
			endMonth = 12
		}
		if r.EndYear*100+endMonth < r.StartYear*100+startMonth {
			return fieldErr("endYear", "must not be before the start date")
		}
	}

	return nil
}
