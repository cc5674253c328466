package document

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// NextNumber derives the next unused CR number for a project by
// scanning the filenames in its CR directory. There is no counter file
// and no cached state: every call re-reads the directory, so the
// answer can never drift from the files that actually exist.
//
// dir must be the project's configured CR directory, which is not
// always the project root. A directory that does not exist yet counts
// as empty. startNumber is the number for the first CR of an empty
// project; values below 1 are treated as 1.
func NextNumber(dir, code string, startNumber int) (int, error) {
	if startNumber < 1 {
		startNumber = 1
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return startNumber, nil
		}
		return 0, fmt.Errorf("reading CR directory %s: %w", dir, err)
	}

	pattern := filenameNumberPattern(code)
	highest := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			continue
		}
		if int(n) > highest {
			highest = int(n)
		}
	}

	if highest == 0 {
		return startNumber, nil
	}
	return highest + 1, nil
}

// filenameNumberPattern matches "{code}-{digits}" at the start of a CR
// filename, followed by the slug separator, the extension, or nothing.
// The code comparison is case-insensitive: files renamed by hand with a
// lowercased code still count toward numbering.
func filenameNumberPattern(code string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(strings.ToUpper(code)) + `-(\d+)(?:[-.]|$)`)
}
