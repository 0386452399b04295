package models

// RankingUser is one leaderboard row.
type RankingUser struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	ProfilePicture   string  `json:"profilePicture,omitempty"`
	University       string  `json:"university,omitempty"`
	Career           string  `json:"career,omitempty"`
	TotalAnalyses    int     `json:"totalAnalyses"`
	AverageScore     float64 `json:"averageScore"`
	TotalIssuesFound int     `json:"totalIssuesFound"`
	Rank             int     `json:"rank"`
}

// GlobalStats are platform-wide leaderboard aggregates.
type GlobalStats struct {
	TotalUsers          int             `json:"totalUsers"`
	TotalAnalyses       int             `json:"totalAnalyses"`
	AverageQualityScore float64         `json:"averageQualityScore"`
	TotalIssuesFound    int             `json:"totalIssuesFound"`
	MostActiveUser      MostActiveUser  `json:"mostActiveUser"`
	BestQualityUser     BestQualityUser `json:"bestQualityUser"`
}

// MostActiveUser names the user with the most analyses.
type MostActiveUser struct {
	Name          string `json:"name"`
	AnalysesCount int    `json:"analysesCount"`
}

// BestQualityUser names the user with the best average score.
type BestQualityUser struct {
	Name         string  `json:"name"`
	QualityScore float64 `json:"qualityScore"`
}

// GlobalRankings is the payload of the global leaderboard.
type GlobalRankings struct {
	Rankings    []RankingUser `json:"rankings"`
	GlobalStats GlobalStats   `json:"globalStats"`
}

// MyPosition is the caller's place on the leaderboard.
type MyPosition struct {
	UserRank   *RankingUser `json:"userRank"`
	Position   int          `json:"position"`
	TotalUsers int          `json:"totalUsers"`
}

// Percentile is the position expressed as a rounded percentage of all users, or 0 when unknown.
func (p MyPosition) Percentile() int {
	if p.TotalUsers <= 0 || p.Position <= 0 {
		return 0
	}
	return int(float64(p.Position)/float64(p.TotalUsers)*100 + 0.5)
}
