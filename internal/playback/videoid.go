package playback

import "regexp"

// VideoIDLength is the length of every YouTube video identifier.
const VideoIDLength = 11

var videoIDPattern = regexp.MustCompile(`^.*(?:youtu\.be/|/v/|/u/\w/|/embed/|/shorts/|watch\?v=|[?&]v=)([^#&?/]*).*`)

// ExtractVideoID pulls the video identifier out of a YouTube URL. It reports
// false for anything that does not carry an 11 character identifier.
func ExtractVideoID(url string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil || len(m[1]) != VideoIDLength {
		return "", false
	}
	return m[1], true
}
