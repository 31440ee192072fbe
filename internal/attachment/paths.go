package attachment

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DetectedPath is an existing file path found in composer input
type DetectedPath struct {
	Path     string
	StartIdx int // Start position in original string
	EndIdx   int // End position in original string
}

// Detection holds every file path found in the input and the prompt left
// once they are removed
type Detection struct {
	Paths []DetectedPath
	Query string
}

func (d Detection) HasPaths() bool {
	return len(d.Paths) > 0
}

// Images returns the detected paths that look like images
func (d Detection) Images() []string {
	var out []string
	for _, p := range d.Paths {
		if IsImage(strings.ToLower(filepath.Ext(p.Path))) {
			out = append(out, p.Path)
		}
	}
	return out
}

// Files returns the detected paths that are not images
func (d Detection) Files() []string {
	var out []string
	for _, p := range d.Paths {
		if !IsImage(strings.ToLower(filepath.Ext(p.Path))) {
			out = append(out, p.Path)
		}
	}
	return out
}

// DetectPaths finds existing file paths (Windows, Linux, macOS) typed or
// dropped into the composer
func DetectPaths(input string) Detection {
	var paths []DetectedPath
	paths = append(paths, detectWindowsPaths(input)...)
	paths = append(paths, detectUnixPaths(input)...)

	if len(paths) == 0 {
		return Detection{Query: input}
	}

	sort.Slice(paths, func(i, j int) bool {
		return paths[i].StartIdx < paths[j].StartIdx
	})

	return Detection{
		Paths: paths,
		Query: extractQuery(input, paths),
	}
}

// detectWindowsPaths finds Windows-style paths (C:\, D:\, etc.)
func detectWindowsPaths(input string) []DetectedPath {
	var paths []DetectedPath

	for i := 0; i < len(input)-2; i++ {
		if !isDriveLetter(input[i]) || input[i+1] != ':' || (input[i+2] != '\\' && input[i+2] != '/') {
			continue
		}

		pathStart := i
		pathEnd := pathStart + 3
		for pathEnd < len(input) && !strings.ContainsRune("\r\n\t", rune(input[pathEnd])) {
			pathEnd++
		}

		if p, ok := longestExistingFile(input, pathStart, input[pathStart:pathEnd], 3, "\\/"); ok {
			paths = append(paths, p)
			i = p.EndIdx - 1
		}
	}

	return paths
}

// detectUnixPaths finds Unix-style paths (/home/, /usr/, etc.)
func detectUnixPaths(input string) []DetectedPath {
	var paths []DetectedPath

	for i := 0; i < len(input); i++ {
		if input[i] != '/' || !isLikelyUnixPath(input, i) {
			continue
		}

		pathStart := i
		pathEnd := pathStart + 1
		for pathEnd < len(input) && !strings.ContainsRune("\t\r\n,;", rune(input[pathEnd])) {
			pathEnd++
		}

		if p, ok := longestExistingFile(input, pathStart, input[pathStart:pathEnd], 1, "/"); ok {
			paths = append(paths, p)
			i = p.EndIdx - 1
		}
	}

	return paths
}

// longestExistingFile shortens candidate word by word, then component by
// component, until it names an existing regular file
func longestExistingFile(input string, start int, candidate string, minLen int, seps string) (DetectedPath, bool) {
	for len(candidate) > minLen {
		candidate = strings.TrimRight(candidate, " \t"+seps)
		if candidate == "" {
			break
		}

		last := candidate[len(candidate)-1]
		if strings.ContainsRune(`<>|"*?`, rune(last)) {
			candidate = candidate[:len(candidate)-1]
			continue
		}

		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return DetectedPath{
				Path:     candidate,
				StartIdx: start,
				EndIdx:   start + len(candidate),
			}, true
		}

		if lastSpace := strings.LastIndex(candidate, " "); lastSpace > minLen {
			candidate = candidate[:lastSpace]
			continue
		}

		lastSep := strings.LastIndexAny(candidate, seps)
		if lastSep < minLen {
			break
		}
		candidate = candidate[:lastSep]
	}

	return DetectedPath{}, false
}

func isDriveLetter(ch byte) bool {
	return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z'
}

// isLikelyUnixPath checks if a slash at position i is likely the start of a Unix path
func isLikelyUnixPath(input string, i int) bool {
	if i > 0 && !strings.ContainsRune(" \t\n,([", rune(input[i-1])) {
		return false
	}

	commonPrefixes := []string{
		"/home/", "/usr/", "/var/", "/tmp/", "/etc/", "/opt/",
		"/mnt/", "/media/", "/root/", "/srv/",
		"/Users/", "/Volumes/", "/private/", // macOS
	}

	remaining := input[i:]
	for _, prefix := range commonPrefixes {
		if strings.HasPrefix(remaining, prefix) {
			return true
		}
	}

	return strings.Count(remaining[:min(len(remaining), 50)], "/") >= 2
}

// extractQuery extracts the prompt text by removing detected paths
func extractQuery(input string, paths []DetectedPath) string {
	var queryParts []string
	lastEnd := 0

	for _, path := range paths {
		if path.StartIdx > lastEnd {
			if part := strings.TrimSpace(input[lastEnd:path.StartIdx]); part != "" {
				queryParts = append(queryParts, part)
			}
		}
		lastEnd = path.EndIdx
	}

	if lastEnd < len(input) {
		if part := strings.TrimSpace(input[lastEnd:]); part != "" {
			queryParts = append(queryParts, part)
		}
	}

	return strings.Join(queryParts, " ")
}
