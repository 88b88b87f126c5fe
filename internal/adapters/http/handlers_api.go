package web

import (
	"log/slog"
	"net/http"

	"frontdesk/internal/adapters/http/middleware"
	"frontdesk/internal/application/listutil"
	"frontdesk/internal/application/orchestrators"
	"frontdesk/internal/application/projections"
)

// apiInternalError is internalError for the JSON API.
func apiInternalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	middleware.WriteJSONError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
}

// handleAPIMembers handles GET /api/members. Accepts the same query parameters as /members.
func handleAPIMembers(w http.ResponseWriter, r *http.Request) {
	lp := listutil.Parse(r.URL.Query(), projections.MemberListSortColumns, projections.MemberListFilterKeys)
	result, err := projections.QueryGetMemberList(r.Context(),
		projections.GetMemberListQuery{Params: lp},
		projections.GetMemberListDeps{MemberStore: stores.MemberStore}, now())
	if err != nil {
		apiInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAPICheckin handles POST /api/checkin with {"member_id": "M001"}.
func handleAPICheckin(w http.ResponseWriter, r *http.Request) {
	if !isJSONBody(r) {
		middleware.WriteJSONError(w, http.StatusBadRequest, "Content-Type must be application/json")
		return
	}
	var body checkInRequest
	if err := strictDecode(r, &body); err != nil {
		middleware.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := orchestrators.ExecuteCheckInMember(r.Context(),
		orchestrators.CheckInMemberInput{MemberID: body.MemberID}, checkInDeps())
	if orchestrators.IsValidation(err) {
		middleware.WriteJSONError(w, validationStatus(err), err.Error())
		return
	}
	if err != nil {
		apiInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCheckInResponse(result))
}

// handleAPIDashboard handles GET /api/dashboard
func handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetDashboard(r.Context(),
		projections.GetDashboardQuery{RecentLimit: opts.RecentPayments}, dashboardDeps(), now())
	if err != nil {
		apiInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAPINotFound answers unknown /api/ paths in the API's error shape.
func handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSONError(w, http.StatusNotFound, "The requested resource does not exist")
}
