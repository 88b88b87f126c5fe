package web

import (
	"net/http"

	"frontdesk/internal/application/orchestrators"
	"frontdesk/internal/domain/attendance"
	"frontdesk/internal/domain/member"
)

// checkInRequest is the JSON body accepted by POST /api/checkin.
type checkInRequest struct {
	MemberID string `json:"member_id"`
}

// checkInResponse is the JSON answer to a scan.
type checkInResponse struct {
	Action   string `json:"action"`
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Time     string `json:"time"`
	Date     string `json:"date"`
	Expired  bool   `json:"expired"`
	EndDate  string `json:"end_date"`
}

func newCheckInResponse(res orchestrators.CheckInResult) checkInResponse {
	return checkInResponse{
		Action:   res.Action,
		MemberID: res.Member.ID,
		Name:     res.Member.Name,
		Time:     res.Time,
		Date:     res.Date,
		Expired:  res.Expired,
		EndDate:  res.Member.EndDate,
	}
}

func checkInDeps() orchestrators.CheckInMemberDeps {
	return orchestrators.CheckInMemberDeps{
		MemberStore:     stores.MemberStore,
		AttendanceStore: stores.AttendanceStore,
		Now:             now,
	}
}

// handleCheckinPage handles GET /checkin. A scanned member QR arrives with ?id= and the page submits itself.
func handleCheckinPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "checkin.html", map[string]any{
		"Title": "Check in",
		"ID":    member.NormalizeID(r.URL.Query().Get("id")),
	})
}

// handleCheckin handles POST /checkin from the kiosk form.
// JSON clients use POST /api/checkin.
func handleCheckin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.CheckInMemberInput{MemberID: r.FormValue("member_id")}

	result, err := orchestrators.ExecuteCheckInMember(r.Context(), input, checkInDeps())
	if orchestrators.IsValidation(err) {
		renderTemplateStatus(w, r, http.StatusUnprocessableEntity, "checkin.html", map[string]any{
			"Title": "Check in",
			"ID":    "",
			"Error": err.Error(),
		})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/checkin/success?"+successQuery(result), http.StatusSeeOther)
}

// handleCheckinSuccess handles GET /checkin/success
func handleCheckinSuccess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	action := q.Get("action")
	if action != attendance.ActionCheckedIn && action != attendance.ActionCheckedOut {
		http.Redirect(w, r, "/checkin", http.StatusSeeOther)
		return
	}
	title := "Checked out"
	if action == attendance.ActionCheckedIn {
		title = "Checked in"
	}
	renderTemplate(w, r, "checkin_success.html", map[string]any{
		"Title":     title,
		"CheckedIn": action == attendance.ActionCheckedIn,
		"ID":        q.Get("id"),
		"Name":      q.Get("name"),
		"Time":      q.Get("time"),
		"Expired":   q.Get("expired") == "1",
	})
}
