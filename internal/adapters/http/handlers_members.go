package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"frontdesk/internal/application/listutil"
	"frontdesk/internal/application/orchestrators"
	"frontdesk/internal/application/projections"
	"frontdesk/internal/domain/member"
)

// PlanOptions pre-fill the plan picker; the desk may type any other plan.
var PlanOptions = []string{"Monthly", "Quarterly", "Half-Yearly", "Yearly"}

// memberForm echoes submitted values back into the register form.
type memberForm struct {
	Name      string
	Phone     string
	Plan      string
	Fees      string
	StartDate string
	EndDate   string
}

// renewForm echoes submitted values back into the renew form.
type renewForm struct {
	NewEndDate string
	Amount     string
	Plan       string
}

func registerDeps() orchestrators.RegisterMemberDeps {
	deps := orchestrators.RegisterMemberDeps{
		MemberStore:  stores.MemberStore,
		PaymentStore: stores.PaymentStore,
		Notify:       opts.Notify,
		Now:          now,
	}
	if opts.QRIssuer != nil {
		deps.QRIssuer = opts.QRIssuer
	}
	return deps
}

func memberDetailDeps() projections.GetMemberDetailDeps {
	return projections.GetMemberDetailDeps{
		MemberStore:  stores.MemberStore,
		PaymentStore: stores.PaymentStore,
	}
}

// handleMembers handles GET /members with search, status filter, sort and pagination.
func handleMembers(w http.ResponseWriter, r *http.Request) {
	lp := listutil.Parse(r.URL.Query(), projections.MemberListSortColumns, projections.MemberListFilterKeys)
	result, err := projections.QueryGetMemberList(r.Context(),
		projections.GetMemberListQuery{Params: lp},
		projections.GetMemberListDeps{MemberStore: stores.MemberStore}, now())
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "member_list.html", map[string]any{
		"Title":          "Members",
		"R":              result,
		"Params":         lp,
		"Status":         lp.Filters["status"],
		"PerPageOptions": listutil.PerPageOptions,
		"HasFilters":     lp.Search != "" || lp.Filters["status"] != "",
	})
}

// handleMemberNewPage handles GET /members/new
func handleMemberNewPage(w http.ResponseWriter, r *http.Request) {
	today := now()
	renderMemberNew(w, r, http.StatusOK, memberForm{
		Plan:      PlanOptions[0],
		StartDate: today.Format(member.DateLayout),
		EndDate:   today.AddDate(0, 1, 0).Format(member.DateLayout),
	}, "")
}

func renderMemberNew(w http.ResponseWriter, r *http.Request, status int, form memberForm, msg string) {
	renderTemplateStatus(w, r, status, "member_new.html", map[string]any{
		"Title": "Register member",
		"Form":  form,
		"Plans": PlanOptions,
		"Error": msg,
	})
}

// handleMemberNew handles POST /members/new
func handleMemberNew(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	form := memberForm{
		Name:      r.FormValue("name"),
		Phone:     r.FormValue("phone"),
		Plan:      r.FormValue("plan"),
		Fees:      r.FormValue("fees"),
		StartDate: r.FormValue("start_date"),
		EndDate:   r.FormValue("end_date"),
	}
	fees, err := formInt(form.Fees)
	if err != nil {
		renderMemberNew(w, r, http.StatusUnprocessableEntity, form, "Fees must be a whole number.")
		return
	}

	input := orchestrators.RegisterMemberInput{
		Name:      form.Name,
		Phone:     form.Phone,
		Plan:      form.Plan,
		Fees:      fees,
		StartDate: form.StartDate,
		EndDate:   form.EndDate,
	}
	result, err := orchestrators.ExecuteRegisterMember(r.Context(), input, registerDeps())
	if orchestrators.IsValidation(err) {
		renderMemberNew(w, r, http.StatusUnprocessableEntity, form, err.Error())
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/members/"+url.PathEscape(result.Member.ID)+"?registered=1", http.StatusSeeOther)
}

// handleMemberDetail handles GET /members/{id}: profile, QR and payment history.
func handleMemberDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := projections.QueryGetMemberDetail(r.Context(), r.PathValue("id"), memberDetailDeps(), now())
	if errors.Is(err, member.ErrNotFound) {
		renderError(w, r, http.StatusNotFound, "No member with ID "+r.PathValue("id")+".")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	q := r.URL.Query()
	renderTemplate(w, r, "member_detail.html", map[string]any{
		"Title":      detail.Member.Name,
		"M":          detail,
		"QRImage":    "/qr/" + url.PathEscape(detail.Member.ID+".png"),
		"CheckInURL": checkInURL(detail.Member.ID),
		"Registered": q.Get("registered") == "1",
		"Renewed":    q.Get("renewed") == "1",
	})
}

func checkInURL(id string) string {
	if opts.QRIssuer == nil {
		return "/checkin?id=" + url.QueryEscape(id)
	}
	return opts.QRIssuer.CheckInURL(id)
}

// handleMemberRenewPage handles GET /members/renew?id=
func handleMemberRenewPage(w http.ResponseWriter, r *http.Request) {
	id := member.NormalizeID(r.URL.Query().Get("id"))
	if id == "" {
		renderTemplate(w, r, "member_renew.html", map[string]any{"Title": "Renew membership", "Lookup": "", "Error": ""})
		return
	}
	detail, err := projections.QueryGetMemberDetail(r.Context(), id, memberDetailDeps(), now())
	if errors.Is(err, member.ErrNotFound) {
		renderTemplateStatus(w, r, http.StatusNotFound, "member_renew.html", map[string]any{
			"Title":  "Renew membership",
			"Lookup": id,
			"Error":  "No member with ID " + id + ".",
		})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	renderRenew(w, r, http.StatusOK, detail, renewForm{
		NewEndDate: detail.SuggestedEndDate,
		Amount:     strconv.Itoa(detail.Member.Fees),
		Plan:       detail.Member.Plan,
	}, "")
}

func renderRenew(w http.ResponseWriter, r *http.Request, status int, detail projections.MemberDetailResult, form renewForm, msg string) {
	renderTemplateStatus(w, r, status, "member_renew.html", map[string]any{
		"Title":  "Renew " + detail.Member.Name,
		"M":      detail,
		"Form":   form,
		"Plans":  PlanOptions,
		"Lookup": detail.Member.ID,
		"Error":  msg,
	})
}

// handleMemberRenew handles POST /members/renew
func handleMemberRenew(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := member.NormalizeID(r.FormValue("member_id"))
	form := renewForm{
		NewEndDate: r.FormValue("new_end_date"),
		Amount:     r.FormValue("amount"),
		Plan:       r.FormValue("plan"),
	}
	if id == "" {
		renderError(w, r, http.StatusBadRequest, "Member ID is required.")
		return
	}

	detail, err := projections.QueryGetMemberDetail(r.Context(), id, memberDetailDeps(), now())
	if errors.Is(err, member.ErrNotFound) {
		renderError(w, r, http.StatusNotFound, "No member with ID "+id+".")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	amount, err := formInt(form.Amount)
	if err != nil {
		renderRenew(w, r, http.StatusUnprocessableEntity, detail, form, "Amount must be a whole number.")
		return
	}
	input := orchestrators.RenewMemberInput{
		MemberID:   id,
		NewEndDate: form.NewEndDate,
		Amount:     amount,
		Plan:       form.Plan,
	}
	deps := orchestrators.RenewMemberDeps{
		MemberStore:  stores.MemberStore,
		PaymentStore: stores.PaymentStore,
		Notify:       opts.Notify,
		Now:          now,
	}
	if _, err := orchestrators.ExecuteRenewMember(r.Context(), input, deps); err != nil {
		if orchestrators.IsValidation(err) {
			renderRenew(w, r, http.StatusUnprocessableEntity, detail, form, err.Error())
			return
		}
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/members/"+url.PathEscape(id)+"?renewed=1", http.StatusSeeOther)
}
