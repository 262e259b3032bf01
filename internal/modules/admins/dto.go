package admins

import "caradmin/internal/domain/admin"

// ListResponse is the admins screen: the list and its counters
type ListResponse struct {
	Admins  []admin.Admin `json:"admins"`
	Summary admin.Summary `json:"summary"`
}

// WorkingHoursRequest is the body of PUT /admins/:id/working-hours
type WorkingHoursRequest struct {
	WorkingDays []admin.WorkingDay `json:"workingDays" validate:"required,max=7,dive"`
}

// WorkingHoursResponse is the week with defaults filled in
type WorkingHoursResponse struct {
	AdminID     int64              `json:"adminId"`
	WorkingDays []admin.WorkingDay `json:"workingDays"`
	WorkingNow  bool               `json:"workingNow"`
}
