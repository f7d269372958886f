package parser

// line is one physical line of the source. Offsets are absolute bytes
// into the full document; end excludes the line terminator.
type line struct {
	start  uint32
	end    uint32
	indent uint32 // leading space count; first content byte is start+indent
	tab    bool   // indentation contained a tab
}

// scanLinesBetween splits src[from:to) into physical lines. from and to
// must sit on line boundaries of src.
func scanLinesBetween(src string, from, to uint32) []line {
	var out []line
	i := from
	for i < to {
		start := i
		for i < to && src[i] != '\n' {
			i++
		}
		end := i
		if end > start && src[end-1] == '\r' {
			end--
		}
		j := start
		tab := false
		for j < end {
			if src[j] == ' ' {
				j++
				continue
			}
			if src[j] == '\t' {
				tab = true
				j++
				continue
			}
			break
		}
		out = append(out, line{start: start, end: end, indent: j - start, tab: tab})
		i++
	}
	return out
}

// lineStartBefore returns the offset of the first byte of the line
// containing off.
func lineStartBefore(src string, off uint32) uint32 {
	if off > uint32(len(src)) {
		off = uint32(len(src))
	}
	for off > 0 && src[off-1] != '\n' {
		off--
	}
	return off
}
