package tokenizer

import (
	"strings"
	"testing"
)

var benchTexts = map[string]string{
	"short":  "funny pet and nasty rat",
	"medium": strings.Repeat("big dog hamster Borya with curly hair ", 10),
	"long":   strings.Repeat("white cat and fashionable collar with expressive eyes ", 200),
}

func BenchmarkSplitValid(b *testing.B) {
	for name, text := range benchTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				if _, err := SplitValid(text); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
