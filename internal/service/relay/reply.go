package relay

import "strings"

const (
	summaryHeading    = "*Summary:*\n"
	transcriptHeading = "*Transcript:*\n"
)

// ComposeReply formats the reply text: an optional summary block followed by
// the transcript block.
func ComposeReply(summary, transcript string) string {
	var b strings.Builder
	if summary != "" {
		b.WriteString(summaryHeading)
		b.WriteString(summary)
		b.WriteString("\n\n")
	}
	b.WriteString(transcriptHeading)
	b.WriteString(transcript)
	return b.String()
}
