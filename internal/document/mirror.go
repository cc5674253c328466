package document

import (
	"regexp"
	"strings"
)

// mirroredKeys maps attribute names to the display name used by their
// bullet line in the body. Mirroring is opportunistic: a document
// without the bullet line is fine, a bullet line with a stale value is
// not. The attribute block is the source of truth; the bullet is a
// derived view, so sync runs one direction only.
var mirroredKeys = map[string]string{
	"status":   "Status",
	"type":     "Type",
	"priority": "Priority",
	"assignee": "Assignee",
}

// MirroredKeys returns the attribute names that have a body mirror.
func MirroredKeys() []string {
	keys := make([]string, 0, len(mirroredKeys))
	for k := range mirroredKeys {
		keys = append(keys, k)
	}
	return keys
}

// mirrorLinePattern matches a mirrored bullet line and captures:
// 1 = everything before the value (marker, optional bold display name,
// colon, spacing), 2 = the display name itself.
// Accepted forms: "- **Status**: value" and "- Status: value".
var mirrorLinePattern = regexp.MustCompile(`^(\s*-\s+(?:\*\*)?([A-Za-z][A-Za-z ]*?)(?:\*\*)?\s*:\s*)(.*)$`)

// SyncMirrors rewrites the body bullet lines for the changed attribute
// keys so they match the attribute block. Lines keep their own style
// (bold or plain); surrounding text is untouched; keys without a
// bullet line cause no edit. A changed key that no longer exists in the
// attribute block has its bullet line removed rather than rewritten to
// an empty value. Returns the updated body.
func SyncMirrors(body string, attrs *Attributes, changed []string) string {
	displayToKey := make(map[string]string, len(changed))
	for _, key := range changed {
		if display, ok := mirroredKeys[key]; ok {
			displayToKey[display] = key
		}
	}
	if len(displayToKey) == 0 {
		return body
	}

	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	inFence := false
	for _, line := range lines {
		if isFenceLine(line) {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		m := mirrorLinePattern.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}
		key, ok := displayToKey[m[2]]
		if !ok {
			out = append(out, line)
			continue
		}
		value, present := attrs.Get(key)
		if !present {
			continue
		}
		out = append(out, m[1]+value)
	}
	return strings.Join(out, "\n")
}

// isFenceLine reports whether a line opens or closes a fenced code
// block. Bullet lines inside fences are examples, not mirrors.
func isFenceLine(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}
