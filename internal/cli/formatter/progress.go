package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderSuccessRate renders a bar such as "[██████░░] 75% ok (6/8)".
// The bar turns yellow below 90% and red below 50%.
func RenderSuccessRate(ok, total, width int) string {
	if total <= 0 {
		return Dim("no data")
	}
	width = max(width, 2)
	ok = min(max(ok, 0), total)

	filled := ok * width / total
	style := StyleGreen
	pct := ok * 100 / total
	switch {
	case pct < 50:
		style = StyleRed
	case pct < 90:
		style = StyleYellow
	}

	bar := style.Render(strings.Repeat(filledBlock, filled)) + StyleDim.Render(strings.Repeat(emptyBlock, width-filled))
	return fmt.Sprintf("[%s] %d%% ok %s", bar, pct, Dim(fmt.Sprintf("(%d/%d)", ok, total)))
}
