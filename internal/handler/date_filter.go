package handler

import (
	"net/http"
	"strconv"
	"time"

	"salonhub-backend/internal/rollup"
	"salonhub-backend/internal/server/authctx"
)

const dateLayout = "2006-01-02"

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseYearQuery returns 0 when year is absent, meaning the current year.
func parseYearQuery(r *http.Request) (int, error) {
	value := r.URL.Query().Get("year")
	if value == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(value)
	if err != nil || year < 1970 || year > 9999 {
		return 0, strconv.ErrRange
	}
	return year, nil
}

// branchQuery resolves the branch a request reads. Branch admins always
// read their own branch; the super admin picks one with ?branch= or gets
// every branch.
func branchQuery(r *http.Request) string {
	if u := authctx.FromContext(r.Context()); u != nil && !u.IsSuperAdmin() {
		return u.Branch
	}
	if b := r.URL.Query().Get("branch"); b != "" {
		return b
	}
	return rollup.AllBranches
}

// ownBranch is the branch a branch admin is confined to, empty for the
// super admin.
func ownBranch(r *http.Request) string {
	if u := authctx.FromContext(r.Context()); u != nil && !u.IsSuperAdmin() {
		return u.Branch
	}
	return ""
}

func ownBranchID(r *http.Request) string {
	if u := authctx.FromContext(r.Context()); u != nil && !u.IsSuperAdmin() {
		return u.BranchID
	}
	return ""
}

// branchIDQuery is branchQuery for collections keyed by branch id.
func branchIDQuery(r *http.Request) string {
	if u := authctx.FromContext(r.Context()); u != nil && !u.IsSuperAdmin() {
		return u.BranchID
	}
	return r.URL.Query().Get("branchId")
}

func inRange(t time.Time, start, end *time.Time) bool {
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(end.Add(24*time.Hour-time.Nanosecond)) {
		return false
	}
	return true
}
