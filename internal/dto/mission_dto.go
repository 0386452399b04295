package dto

import "net/url"

// CustomMissionFilter narrows the custom mission catalog. Empty or "all" values are ignored.
type CustomMissionFilter struct {
	Subject    string
	Difficulty string
}

// Query encodes the active filters.
func (f CustomMissionFilter) Query() url.Values {
	values := url.Values{}
	if f.Subject != "" && f.Subject != "all" {
		values.Set("subject", f.Subject)
	}
	if f.Difficulty != "" && f.Difficulty != "all" {
		values.Set("difficulty", f.Difficulty)
	}
	return values
}

// RankingScope selects which leaderboard to show.
type RankingScope string

const (
	RankingScopeGlobal     RankingScope = "global"
	RankingScopeUniversity RankingScope = "university"
	RankingScopeCareer     RankingScope = "career"
)

// RankingFilter picks a leaderboard. University and career scopes need a value; without one the
// global board is used.
type RankingFilter struct {
	Scope RankingScope
	Value string
	Limit int
}

// Effective resolves the scope that will actually be queried.
func (f RankingFilter) Effective() RankingScope {
	if f.Scope == RankingScopeUniversity || f.Scope == RankingScopeCareer {
		if f.Value != "" {
			return f.Scope
		}
	}
	return RankingScopeGlobal
}
