package output

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// bannerFill is the minimum number of fill characters after a banner title.
const bannerFill = 3

// Banner returns title padded with asterisks to width columns, e.g.
// "TASK [install packages] *****". Titles wider than the terminal still get a
// short run of asterisks. Width is measured in display cells, so wide runes
// count twice.
func Banner(title string, width int) string {
	title = strings.TrimSpace(title)
	fill := width - runewidth.StringWidth(title) - 1
	if fill < bannerFill {
		fill = bannerFill
	}
	return title + " " + strings.Repeat("*", fill)
}
