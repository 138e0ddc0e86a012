package nextcloud

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	require.Equal(t, "Лекции/Физика/05.09.2025", Join("/Лекции/", "", "Физика", "05.09.2025/"))
	require.Equal(t, "", Join("", "/"))
}

func TestUniqueName(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		base     string
		want     string
	}{
		{name: "absent", existing: []string{"y.pdf"}, base: "x.pdf", want: "x.pdf"},
		{name: "first suffix", existing: []string{"x.pdf"}, base: "x.pdf", want: "x_1.pdf"},
		{name: "lowest free", existing: []string{"x.pdf", "x_1.pdf", "x_3.pdf"}, base: "x.pdf", want: "x_2.pdf"},
		{name: "no extension", existing: []string{"notes"}, base: "notes", want: "notes_1"},
		{name: "multi dot", existing: []string{"a.b.md"}, base: "a.b.md", want: "a.b_1.md"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := UniqueName(tc.existing, tc.base)
			require.Equal(t, tc.want, got)
			require.Equal(t, got, UniqueName(tc.existing, tc.base))
		})
	}
}
