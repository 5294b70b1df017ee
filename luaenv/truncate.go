package luaenv

// TruncationMarker is appended to captured output that was cut at the
// configured limit, so the reasoning process knows output is incomplete.
const TruncationMarker = "\n[... output truncated ...]"

// truncateOutput caps output at maxBytes, appending TruncationMarker when
// anything was cut. The returned string is at most maxBytes plus the
// marker length.
func truncateOutput(output string, maxBytes int) (string, bool) {
	if len(output) <= maxBytes {
		return output, false
	}
	return output[:maxBytes] + TruncationMarker, true
}
