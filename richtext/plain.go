package richtext

import (
	"regexp"
	"strings"
)

var (
	styleBlocks  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	scriptBlocks = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	blockBreaks  = regexp.MustCompile(`(?i)<br\s*/?>|</(?:p|li|h[1-6]|div)\s*>`)
	tags         = regexp.MustCompile(`<[^>]+>`)

	entities = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#039;", "'",
	)
)

// StripToPlainText removes markup and decodes the common entities. Block
// boundaries become line breaks; blank lines are dropped.
func StripToPlainText(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	text := styleBlocks.ReplaceAllString(src, "")
	text = scriptBlocks.ReplaceAllString(text, "")
	text = blockBreaks.ReplaceAllString(text, "\n")
	text = tags.ReplaceAllString(text, "")
	text = entities.Replace(text)
	text = StripEmoji(text)

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
