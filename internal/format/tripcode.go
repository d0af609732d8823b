package format

import (
	"encoding/base64"
	"regexp"

	"golang.org/x/crypto/sha3"
)

// nameLine matches "name#password" (insecure) and "name##password"
// (secure). The name group may be empty.
var nameLine = regexp.MustCompile(`^([^#]*)(##|#)(.+)$`)

// ParseNameLine splits a tripcode marker off an author name line.
// Returns the bare name, the tripcode password, whether a secure
// tripcode was requested, and whether a marker was present at all.
func ParseNameLine(author string) (name, password string, secure, ok bool) {
	match := nameLine.FindStringSubmatch(author)
	if match == nil {
		return author, "", false, false
	}
	return match[1], match[3], match[2] == "##", true
}

// InsecureTripcode derives the displayable tripcode for a password.
// Deterministic across deployments: anyone using the same password
// gets the same code on any instance.
func InsecureTripcode(password string) string {
	return "!" + tripcodeDigest(password)
}

// SecureTripcode derives a tripcode salted with the instance secret,
// so it cannot be brute-forced offline or reproduced elsewhere.
func SecureTripcode(password, secret string) string {
	return "!!" + tripcodeDigest(secret + ":" + password)
}

func tripcodeDigest(input string) string {
	sum := sha3.Sum256([]byte(input))
	return base64.RawStdEncoding.EncodeToString(sum[:])[:10]
}
