package devtools

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// nameWidth is the display width of the NAME column.
const nameWidth = 24

// RenderText writes g as an aligned table. Names are padded and truncated
// by display width, so wide runes keep the columns straight.
func RenderText(w io.Writer, g reactive.Graph) error {
	if _, err := fmt.Fprintf(w, "runtime %s (%d nodes)\n", g.Runtime, len(g.Nodes)); err != nil {
		return err
	}
	header := fmt.Sprintf("%6s  %-14s  %s  %-5s  %-16s  %s\n",
		"HANDLE", "KIND", runewidth.FillRight("NAME", nameWidth), "FLAGS", "SUBS", "DEPS")
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for _, n := range g.Nodes {
		name := n.Name
		if name == "" {
			name = "-"
		}
		name = runewidth.Truncate(name, nameWidth, "…")
		name = runewidth.FillRight(name, nameWidth)

		kind := n.Kind.String()
		if n.Owner != 0 {
			kind += "^" + strconv.FormatUint(uint64(n.Owner), 10)
		}

		line := fmt.Sprintf("%6d  %-14s  %s  %-5s  %-16s  %s\n",
			n.Handle, kind, name, flags(n), handles(n.Subs), handles(n.Deps))
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func flags(n reactive.NodeSnapshot) string {
	var b strings.Builder
	if n.Dirty {
		b.WriteByte('D')
	}
	if n.Running {
		b.WriteByte('R')
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

func handles(hs []reactive.Handle) string {
	if len(hs) == 0 {
		return "-"
	}
	parts := make([]string, len(hs))
	for i, h := range hs {
		parts[i] = strconv.FormatUint(uint64(h), 10)
	}
	return strings.Join(parts, ",")
}
