package model

import "time"

// BuildContext holds the CI build metadata of the current run. It is built
// once at startup and never modified.
type BuildContext struct {
	AppTitle      string
	AppURL        string
	AppSlug       string
	WorkflowTitle string

	BuildNumber string
	BuildURL    string
	BuildStatus string    // "0" on success
	TriggeredAt time.Time // zero if unknown

	IsPR          bool // triggered by a pull request
	PullRequestID string
	GitTag        string
	GitBranch     string
	GitBranchDest string
	CommitHash    string
	CommitMessage string
}

const shortCommitLength = 7

// ShortCommit returns the first 7 characters of the commit hash
func (b BuildContext) ShortCommit() string {
	if len(b.CommitHash) <= shortCommitLength {
		return b.CommitHash
	}
	return b.CommitHash[:shortCommitLength]
}

// Elapsed returns the time between the build trigger and now as whole
// minutes and the remaining whole seconds
func (b BuildContext) Elapsed(now time.Time) (minutes, seconds int) {
	if b.TriggeredAt.IsZero() {
		return 0, 0
	}

	d := now.Sub(b.TriggeredAt)
	return int(d / time.Minute), int(d/time.Second) % 60
}
