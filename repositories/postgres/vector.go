package postgres

import (
	"strconv"
	"strings"
)

// formatVector renders vec as a pgvector text literal: [0.1,0.2,...]
func formatVector(vec []float64) string {
	var b strings.Builder
	b.Grow(len(vec) * 10)
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}
