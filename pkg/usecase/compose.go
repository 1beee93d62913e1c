package usecase

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // CI images often ship without zoneinfo

	"github.com/m-mizutani/bitrise-notify/pkg/domain/model"
)

// ReportTimeZone is the zone used to render the build trigger time
const ReportTimeZone = "Europe/Paris"

var reportLocation = mustLoadLocation(ReportTimeZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load time zone %s: %v", name, err))
	}
	return loc
}

// Compose renders the notification title and HTML message. An empty
// avatarURL omits the avatar image. TeamID and ChannelID are left empty.
func Compose(build model.BuildContext, status model.Status, avatarURL string, now time.Time) *model.Notification {
	return &model.Notification{
		Title:   composeTitle(build, status),
		Message: composeMessage(build, status, avatarURL, now),
	}
}

func composeTitle(build model.BuildContext, status model.Status) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s @ %s • ", status.Emoji, status.Label, build.AppTitle)

	switch {
	case build.GitTag != "":
		fmt.Fprintf(&b, "🏷  %s", build.GitTag)
	case build.IsPR:
		fmt.Fprintf(&b, "PR#%s: %s » %s", build.PullRequestID, build.GitBranch, build.GitBranchDest)
	default:
		b.WriteString(build.GitBranch)
	}

	fmt.Fprintf(&b, " → %s", build.WorkflowTitle)
	return b.String()
}

func composeMessage(build model.BuildContext, status model.Status, avatarURL string, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<hr style='border: 2px solid #%s;border-radius: 2px;margin-top: 5px; margin-bottom: 5px;'/>", status.Color)

	b.WriteString("<p style='font-weight: bold'>")
	if avatarURL != "" {
		fmt.Fprintf(&b, "<img src='%s' style='width:20px;height:20px;display:inline;'/>  ", avatarURL)
	}
	fmt.Fprintf(&b, "<a href='%s'>%s</a></p>", build.AppURL, build.AppTitle)

	if build.CommitHash != "" {
		fmt.Fprintf(&b, "<p style='margin-top:5px;'>🔗  %s", build.ShortCommit())
		if build.CommitMessage != "" {
			fmt.Fprintf(&b, " 📝  %s", build.CommitMessage)
		}
		b.WriteString("</p>")
	}

	triggeredAt := build.TriggeredAt
	if triggeredAt.IsZero() {
		triggeredAt = now
	}
	minutes, seconds := build.Elapsed(now)

	fmt.Fprintf(&b, "<p style='margin-top: 5px;color: grey'>Triggered @ %s - %dm %ds - <a href='%s'>#%s</a></p>",
		triggeredAt.In(reportLocation).Format("15:04"),
		minutes, seconds,
		build.BuildURL, build.BuildNumber,
	)

	return b.String()
}
