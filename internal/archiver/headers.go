package archiver

import (
	"sort"
	"strings"
)

// headerArgs converts channel transport headers into ffmpeg flags. The
// User-Agent header gets its dedicated flag; the rest become one CRLF
// joined -headers blob, sorted for deterministic command lines.
func headerArgs(headers map[string]string) []string {
	if len(headers) == 0 {
		return nil
	}

	var args []string
	rest := make([]string, 0, len(headers))
	for key, value := range headers {
		if value == "" {
			continue
		}
		if strings.EqualFold(key, "user-agent") {
			args = append(args, "-user_agent", value)
			continue
		}
		rest = append(rest, key+": "+value)
	}
	if len(rest) > 0 {
		sort.Strings(rest)
		args = append(args, "-headers", strings.Join(rest, "\r\n")+"\r\n")
	}
	return args
}
